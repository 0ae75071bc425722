package service

import (
	"context"
	"errors"
	"time"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/internal/arpoone"
	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/pkg/logger"
)

// Small internal interfaces so we can test without touching real
// DB/Redis/provider.
type configResolver interface {
	Resolve(ctx context.Context, tenantID *string) (*domain.Configuration, error)
}

type providerClient interface {
	Send(ctx context.Context, cfg *domain.Configuration, payload *arpoone.Payload) (*arpoone.ProviderResponse, error)
}

type dispatchLogRepository interface {
	Create(ctx context.Context, record *domain.DispatchRecord) (*domain.DispatchRecord, error)
	FindByMessageID(ctx context.Context, channel domain.Channel, messageID string) (*domain.DispatchRecord, error)
	UpdateStatus(ctx context.Context, channel domain.Channel, messageID string, status domain.DispatchStatus) (int64, error)
	List(ctx context.Context, channel domain.Channel, page, pageSize int) ([]domain.DispatchRecord, int64, error)
}

// Cache is the optional dispatch cache; a nil Cache disables caching.
// Exported so main can pass nil when Redis is unavailable without
// tripping over a typed-nil interface.
type Cache interface {
	CacheDispatch(ctx context.Context, record *domain.DispatchRecord) error
	GetAllCachedDispatches(ctx context.Context) (map[string]*domain.CachedDispatch, error)
}

// DispatchService runs the dispatch pipeline: resolve configuration,
// build the provider payload, execute the send, then record and cache
// the outcome when logging is enabled for the channel.
type DispatchService struct {
	resolver  configResolver
	provider  providerClient
	logs      dispatchLogRepository
	cache     Cache
	settings  environments.ArpooneConfig
	callbacks arpoone.CallbackConfig
}

func NewDispatchService(
	resolver configResolver,
	provider providerClient,
	logs dispatchLogRepository,
	cache Cache,
	settings environments.ArpooneConfig,
	appURL string,
) *DispatchService {
	return &DispatchService{
		resolver: resolver,
		provider: provider,
		logs:     logs,
		cache:    cache,
		settings: settings,
		callbacks: arpoone.CallbackConfig{
			BaseURL: appURL,
			Sms:     settings.SmsWebhooks,
			Email:   settings.EmailWebhooks,
		},
	}
}

// DispatchResult is the outcome of one dispatch. LoggingErr is set when
// the provider accepted the message but the dispatch log write failed;
// the message was sent regardless, so the caller must not treat that as
// a send failure.
type DispatchResult struct {
	Response   *arpoone.ProviderResponse
	Record     *domain.DispatchRecord
	LoggingErr error
}

// Dispatch sends the source's message through the provider. The
// notifiable must implement the routing interface for the message's
// channel (PhoneNumberRoutable for SMS, EmailRoutable for email).
func (s *DispatchService) Dispatch(
	ctx context.Context,
	tenantID *string,
	notifiable any,
	source domain.MessageSource,
) (*DispatchResult, error) {
	msg, err := source.ArpooneMessage()
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, &arpoone.ValidationError{Msg: "the message source returned no message"}
	}

	cfg, err := s.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	payload, err := arpoone.BuildPayload(notifiable, msg, cfg, s.callbacks)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Send(ctx, cfg, payload)
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{Response: resp}

	if !s.loggingEnabled(payload.Channel) {
		return result, nil
	}

	if len(resp.Messages) == 0 {
		result.LoggingErr = arpoone.NewLoggingFailed(errors.New("provider response contained no message entries"))
		return result, nil
	}

	record := &domain.DispatchRecord{
		Channel:   payload.Channel,
		MessageID: resp.Messages[0].MessageID,
		Recipient: payload.Recipient,
		Content:   payload.Body,
		Status:    domain.StatusPending,
		SentAt:    nowUTC(),
	}
	if payload.Channel == domain.ChannelSMS {
		cost := resp.Messages[0].Cost
		record.Cost = &cost
	}
	if s.settings.MultiTenant {
		record.TenantID = tenantID
	}

	created, err := s.logs.Create(ctx, record)
	if err != nil {
		logger.Errorf("Message %s sent but logging failed: %v", record.MessageID, err)
		result.LoggingErr = arpoone.NewLoggingFailed(err)
		return result, nil
	}

	result.Record = created

	if s.cache != nil {
		if err := s.cache.CacheDispatch(ctx, created); err != nil {
			logger.Warnf("Failed to cache dispatch %s: %v", created.MessageID, err)
		}
	}

	logger.Infof("Dispatched %s message %s to %s", payload.Channel, created.MessageID, created.Recipient)

	return result, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

func (s *DispatchService) loggingEnabled(channel domain.Channel) bool {
	switch channel {
	case domain.ChannelSMS:
		return s.settings.LogSms
	case domain.ChannelEmail:
		return s.settings.LogEmail
	default:
		return false
	}
}

func (s *DispatchService) ListDispatches(ctx context.Context, channel domain.Channel, page, pageSize int) ([]domain.DispatchRecord, int64, error) {
	return s.logs.List(ctx, channel, page, pageSize)
}

func (s *DispatchService) GetDispatchByMessageID(ctx context.Context, channel domain.Channel, messageID string) (*domain.DispatchRecord, error) {
	return s.logs.FindByMessageID(ctx, channel, messageID)
}

func (s *DispatchService) GetCachedDispatches(ctx context.Context) (map[string]*domain.CachedDispatch, error) {
	if s.cache == nil {
		return nil, errors.New("cache client not configured")
	}
	return s.cache.GetAllCachedDispatches(ctx)
}
