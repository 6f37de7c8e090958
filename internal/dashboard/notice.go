package dashboard

import (
	"errors"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
)

// Notice messages shown to the operator.
const (
	MsgDuplicate   = "Já está salvo no repositório."
	MsgDeleteInbox = "Não é possível apagar do Feed Global. Use 'Salvar' para mover para seu Repositório."
	MsgUnsupported = "Operação não permitida para este item."
	MsgInvalid     = "Dados inválidos."
	MsgNotFound    = "Item não encontrado."
	MsgSyncFailed  = "Falha ao sincronizar dados com o servidor."
)

// Notice kinds.
const (
	NoticeKindError = "error"
	NoticeKindInfo  = "info"
)

// NoticeFor maps an error to the notice shown to the operator.
// It returns nil for a nil error.
func NoticeFor(err error) *Notice {
	if err == nil {
		return nil
	}

	msg := MsgSyncFailed
	kind := NoticeKindError
	switch {
	case errors.Is(err, domain.ErrDuplicateEntry):
		msg, kind = MsgDuplicate, NoticeKindInfo
	case errors.Is(err, domain.ErrUnsupportedOperation):
		msg = MsgUnsupported
	case errors.Is(err, domain.ErrInvalidInput):
		msg = MsgInvalid
	case errors.Is(err, domain.ErrNotFound):
		msg = MsgNotFound
	}
	return &Notice{Kind: kind, Message: msg}
}
