package triggers

import "github.com/goliatone/go-triggers/core"

type Config = core.Config
type AuthConfig = core.AuthConfig
type PollingConfig = core.PollingConfig
type WebhookConfig = core.WebhookConfig
type RetentionConfig = core.RetentionConfig

type Option = core.Option

type Service = core.Service
type TriggerService = core.TriggerService

type Registry = core.Registry
type TriggerConfig = core.TriggerConfig
type TriggerKind = core.TriggerKind
type Feed = core.Feed
type FeedFunc = core.FeedFunc
type FeedObject = core.FeedObject
type Serializer = core.Serializer

type Credential = core.Credential
type Owner = core.Owner
type CursorEntry = core.CursorEntry
type PollRequest = core.PollRequest
type Subscription = core.Subscription
type DeliveryEvent = core.DeliveryEvent

type CredentialStore = core.CredentialStore
type CursorStore = core.CursorStore
type PollRequestStore = core.PollRequestStore
type SubscriptionStore = core.SubscriptionStore
type DeliveryEventStore = core.DeliveryEventStore
type OwnerDirectory = core.OwnerDirectory
type Deliverer = core.Deliverer

type CreateCredentialRequest = core.CreateCredentialRequest
type AuthResult = core.AuthResult
type AuthCheckResponse = core.AuthCheckResponse
type PollResult = core.PollResult
type SubscribeRequest = core.SubscribeRequest
type FireEventRequest = core.FireEventRequest
type FireEventResult = core.FireEventResult

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithPersistenceClient  = core.WithPersistenceClient
	WithRepositoryFactory  = core.WithRepositoryFactory
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithRegistry           = core.WithRegistry
	WithCredentialStore    = core.WithCredentialStore
	WithCursorStore        = core.WithCursorStore
	WithPollRequestStore   = core.WithPollRequestStore
	WithSubscriptionStore  = core.WithSubscriptionStore
	WithDeliveryEventStore = core.WithDeliveryEventStore
	WithOwnerDirectory     = core.WithOwnerDirectory
	WithDeliverer          = core.WithDeliverer
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
