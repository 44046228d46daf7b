package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateCredentialMessage]    = (*CreateCredentialCommand)(nil)
	_ gocmd.Commander[SetCredentialScopesMessage] = (*SetCredentialScopesCommand)(nil)
	_ gocmd.Commander[RefreshCredentialMessage]   = (*RefreshCredentialCommand)(nil)
	_ gocmd.Commander[RevokeCredentialMessage]    = (*RevokeCredentialCommand)(nil)
	_ gocmd.Commander[ResetCredentialMessage]     = (*ResetCredentialCommand)(nil)
	_ gocmd.Commander[SubscribeMessage]           = (*SubscribeCommand)(nil)
	_ gocmd.Commander[UnsubscribeMessage]         = (*UnsubscribeCommand)(nil)
	_ gocmd.Commander[FireEventMessage]           = (*FireEventCommand)(nil)
)
