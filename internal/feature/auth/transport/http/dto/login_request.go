// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は POST /login のフォームを表します。
// Next はログイン後の遷移先で、ローカルパス以外は無視されます。
type LoginReq struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}
