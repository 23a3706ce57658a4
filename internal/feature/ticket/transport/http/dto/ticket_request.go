// Package dto は ticket フィーチャーのフォーム入力を定義します。
package dto

// CreateTicketReq は POST /criar_chamado のフォームを表します。
// 添付ファイル arquivo_anexo は c.FormFile で別途取得します。
type CreateTicketReq struct {
	RequestType string `form:"tipo_pedido" binding:"required"`
	Priority    string `form:"prioridade_do_chamado" binding:"required"`
	Category    string `form:"tipo_do_chamado" binding:"required"`
	Subject     string `form:"assunto_do_chamado" binding:"required"`
	Description string `form:"descricao_do_chamado" binding:"required"`
}

// SendMessageReq は POST /chamado/:id/enviar_mensagem のフォームを表します。
// 空文字のチェックは usecase が行います。
type SendMessageReq struct {
	Body string `form:"mensagem"`
}
