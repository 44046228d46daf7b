package core

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config             Config
	logger             Logger
	loggerProvider     LoggerProvider
	metricsRecorder    MetricsRecorder
	errorFactory       ErrorFactory
	errorMapper        ErrorMapper
	persistenceClient  any
	repositoryFactory  any
	configProvider     ConfigProvider
	optionsResolver    OptionsResolver
	registry           Registry
	credentialStore    CredentialStore
	cursorStore        CursorStore
	pollRequestStore   PollRequestStore
	subscriptionStore  SubscriptionStore
	deliveryEventStore DeliveryEventStore
	ownerDirectory     OwnerDirectory
	deliverer          Deliverer
}

type ServiceDependencies struct {
	Logger             Logger
	LoggerProvider     LoggerProvider
	MetricsRecorder    MetricsRecorder
	ErrorFactory       ErrorFactory
	ErrorMapper        ErrorMapper
	PersistenceClient  any
	RepositoryFactory  any
	ConfigProvider     ConfigProvider
	OptionsResolver    OptionsResolver
	Registry           Registry
	CredentialStore    CredentialStore
	CursorStore        CursorStore
	PollRequestStore   PollRequestStore
	SubscriptionStore  SubscriptionStore
	DeliveryEventStore DeliveryEventStore
	OwnerDirectory     OwnerDirectory
	Deliverer          Deliverer
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("triggers", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("triggers"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewTriggerRegistry()
	}
	if builder.ownerDirectory == nil {
		builder.ownerDirectory = NewStaticOwnerDirectory()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			provider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if provider != nil {
				adoptStores(&builder, provider)
			}
		} else if provider, ok := builder.repositoryFactory.(StoreProvider); ok {
			adoptStores(&builder, provider)
		}
	}

	return &Service{
		config:             finalConfig,
		logger:             logger,
		loggerProvider:     provider,
		metricsRecorder:    builder.metricsRecorder,
		errorFactory:       builder.errorFactory,
		errorMapper:        builder.errorMapper,
		persistenceClient:  builder.persistenceClient,
		repositoryFactory:  builder.repositoryFactory,
		configProvider:     builder.configProvider,
		optionsResolver:    builder.optionsResolver,
		registry:           builder.registry,
		credentialStore:    builder.credentialStore,
		cursorStore:        builder.cursorStore,
		pollRequestStore:   builder.pollRequestStore,
		subscriptionStore:  builder.subscriptionStore,
		deliveryEventStore: builder.deliveryEventStore,
		ownerDirectory:     builder.ownerDirectory,
		deliverer:          builder.deliverer,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

// StoreProvider exposes pre-built stores, typically backed by a shared
// database handle.
type StoreProvider interface {
	CredentialStore() CredentialStore
	CursorStore() CursorStore
	PollRequestStore() PollRequestStore
	SubscriptionStore() SubscriptionStore
	DeliveryEventStore() DeliveryEventStore
}

// RepositoryStoreFactory builds a StoreProvider from a persistence client so
// callers can hand the service a database connection and nothing else.
type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

func adoptStores(builder *serviceBuilder, provider StoreProvider) {
	if builder.credentialStore == nil {
		builder.credentialStore = provider.CredentialStore()
	}
	if builder.cursorStore == nil {
		builder.cursorStore = provider.CursorStore()
	}
	if builder.pollRequestStore == nil {
		builder.pollRequestStore = provider.PollRequestStore()
	}
	if builder.subscriptionStore == nil {
		builder.subscriptionStore = provider.SubscriptionStore()
	}
	if builder.deliveryEventStore == nil {
		builder.deliveryEventStore = provider.DeliveryEventStore()
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Registry() Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:             s.logger,
		LoggerProvider:     s.loggerProvider,
		MetricsRecorder:    s.metricsRecorder,
		ErrorFactory:       s.errorFactory,
		ErrorMapper:        s.errorMapper,
		PersistenceClient:  s.persistenceClient,
		RepositoryFactory:  s.repositoryFactory,
		ConfigProvider:     s.configProvider,
		OptionsResolver:    s.optionsResolver,
		Registry:           s.registry,
		CredentialStore:    s.credentialStore,
		CursorStore:        s.cursorStore,
		PollRequestStore:   s.pollRequestStore,
		SubscriptionStore:  s.subscriptionStore,
		DeliveryEventStore: s.deliveryEventStore,
		OwnerDirectory:     s.ownerDirectory,
		Deliverer:          s.deliverer,
	}
}

func (s *Service) RegisterTrigger(cfg TriggerConfig) error {
	if s == nil || s.registry == nil {
		return ErrTriggerNotRegistered
	}
	if err := s.registry.Register(cfg); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
