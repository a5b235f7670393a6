// Package service implements the order/payment state machine driving
// the Simplify integration: hosted payment setup, purchase, authorize,
// capture, void, refund and the hosted-page return callback.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cassiomorais/simplify-gateway/internal/auditlog"
	"github.com/cassiomorais/simplify-gateway/internal/checkout"
	domainErrors "github.com/cassiomorais/simplify-gateway/internal/domain/errors"
	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/config"
	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/observability"
	"github.com/cassiomorais/simplify-gateway/internal/money"
	"github.com/cassiomorais/simplify-gateway/internal/simplify"
	"github.com/cassiomorais/simplify-gateway/pkg/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MinimumOrderTotal is the smallest chargeable amount in minor units.
const MinimumOrderTotal = 50

// Locker serializes manual order actions across service instances.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// GatewayService is the order state machine. All gateway traffic and
// all order status changes go through here.
type GatewayService struct {
	repo      order.Repository
	gateway   simplify.Gateway
	txManager TransactionManager
	locker    Locker
	audit     *auditlog.Logger
	cfg       *config.Config
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

func NewGatewayService(
	repo order.Repository,
	gateway simplify.Gateway,
	txManager TransactionManager,
	locker Locker,
	audit *auditlog.Logger,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *GatewayService {
	return &GatewayService{
		repo:      repo,
		gateway:   gateway,
		txManager: txManager,
		locker:    locker,
		audit:     audit,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// HostedPayment is what the platform needs to render the hosted card
// entry page.
type HostedPayment struct {
	Args            map[string]string `json:"args"`
	IntegrationMode string            `json:"integration_mode"`
	HostedURL       string            `json:"hosted_url"`
}

// Pay prepares the hosted payment page for an order. The charge itself
// happens when the hosted page posts back to the return handler.
func (s *GatewayService) Pay(ctx context.Context, orderID uuid.UUID) (*HostedPayment, error) {
	if err := s.checkAvailability(); err != nil {
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	publicKey, _ := s.cfg.Gateway.ActiveKeys()
	amountMinor := money.MinorUnits(o.Total, s.cfg.Store.PriceDecimals)

	return &HostedPayment{
		Args: checkout.HostedArgs(o, amountMinor, checkout.HostedOptions{
			PublicKey:   publicKey,
			ModalColor:  s.cfg.Gateway.ModalColor,
			RedirectURL: s.cfg.Gateway.CallbackURL,
		}),
		IntegrationMode: s.cfg.Gateway.IntegrationMode,
		HostedURL:       s.cfg.Gateway.HostedURL,
	}, nil
}

// DoPayment charges a card token for the full order total. The order
// is only mutated on approval; decline handling (failing the order,
// buyer notices) belongs to the caller.
func (s *GatewayService) DoPayment(ctx context.Context, o *order.Order, amountMinor int64, cardToken string) error {
	if err := s.checkAvailability(); err != nil {
		return err
	}
	if cardToken == "" {
		return domainErrors.ErrMissingCardToken
	}

	total := money.MinorUnits(o.Total, s.cfg.Store.PriceDecimals)
	if total < MinimumOrderTotal {
		return domainErrors.ErrBelowMinimumTotal
	}
	if amountMinor != total {
		return domainErrors.ErrAmountMismatch
	}

	req := simplify.PaymentRequest{
		Amount:      total,
		Currency:    o.Currency,
		Description: fmt.Sprintf("Order #%s", o.Number),
		Reference:   o.ID.String(),
		Token:       cardToken,
		Customer:    s.createCustomer(ctx, o),
		Order:       s.builder(o).Order(),
	}

	s.auditJSON("Payment Request", req)
	payment, err := s.callPayment(ctx, req)
	if err != nil {
		s.addNote(ctx, o.ID, fmt.Sprintf("Gateway payment error: %s", apiErrorText(err)))
		s.countAction("payment", "error")
		return err
	}
	s.auditJSON("Payment Response", payment)

	if payment.PaymentStatus != simplify.PaymentStatusApproved {
		s.addNote(ctx, o.ID, "Gateway payment declined")
		s.countAction("payment", "declined")
		return domainErrors.ErrPaymentDeclined
	}

	if err := o.PaymentComplete(payment.ID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	s.addNote(ctx, o.ID, fmt.Sprintf(
		"Gateway payment approved (ID: %s, Auth Code: %s)", payment.ID, payment.AuthCode))
	s.countAction("payment", "approved")
	return nil
}

// Authorize places a hold on the card for the order total. On
// approval without capture the order moves to processing with the
// capture flag armed; a capture-on-authorize response completes the
// order immediately. Declines fail the order.
func (s *GatewayService) Authorize(ctx context.Context, o *order.Order, amountMinor int64, cardToken string) error {
	if err := s.checkAvailability(); err != nil {
		return err
	}
	if cardToken == "" {
		return domainErrors.ErrMissingCardToken
	}

	total := money.MinorUnits(o.Total, s.cfg.Store.PriceDecimals)
	if amountMinor != total {
		return domainErrors.ErrAmountMismatch
	}

	req := simplify.AuthorizationRequest{
		Amount:      total,
		Currency:    o.Currency,
		Description: fmt.Sprintf("Order #%s", o.Number),
		Reference:   o.ID.String(),
		Token:       cardToken,
		Customer:    s.createCustomer(ctx, o),
		Order:       s.builder(o).Order(),
	}

	s.auditJSON("Authorize Request", req)
	started := time.Now()
	auth, err := s.gateway.CreateAuthorization(ctx, req)
	s.countGatewayCall("create_authorization", started, err)
	if err != nil {
		s.failOrder(ctx, o, fmt.Sprintf("Gateway authorization error: %s", apiErrorText(err)))
		s.countAction("authorize", "error")
		return err
	}
	s.auditJSON("Authorize Response", auth)

	if auth.PaymentStatus != simplify.PaymentStatusApproved {
		s.failOrder(ctx, o, "Authorization was declined by your gateway.")
		s.countAction("authorize", "declined")
		return domainErrors.ErrPaymentDeclined
	}

	if auth.Captured {
		if err := o.PaymentComplete(auth.ID); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		s.addNote(ctx, o.ID, fmt.Sprintf(
			"Gateway payment approved (ID: %s, Auth Code: %s)", auth.ID, auth.AuthCode))
		s.countAction("authorize", "captured")
		return nil
	}

	if err := o.Authorized(auth.ID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	s.addNote(ctx, o.ID, fmt.Sprintf(
		"Gateway authorization approved (ID: %s, Auth Code: %s)", auth.ID, auth.AuthCode))
	s.countAction("authorize", "approved")
	return nil
}

// Capture settles a previously authorized order. Runs under a
// per-order lock; the captured flag is claimed with a guarded update
// after approval so a second capture can never settle twice.
func (s *GatewayService) Capture(ctx context.Context, orderID uuid.UUID) error {
	if err := s.checkAvailability(); err != nil {
		return err
	}

	return s.locker.WithLock(ctx, "order:"+orderID.String(), func(ctx context.Context) error {
		o, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.checkManualActionPreconditions("capture", o); err != nil {
			return err
		}

		req := simplify.PaymentRequest{
			Amount:        money.MinorUnits(o.Total, s.cfg.Store.PriceDecimals),
			Currency:      o.Currency,
			Description:   fmt.Sprintf("Order #%s", o.Number),
			Reference:     o.ID.String(),
			Authorization: o.AuthorizationCode(),
		}

		s.auditJSON("Capture Request", req)
		payment, err := s.callPayment(ctx, req)
		if err != nil {
			if apiErr, ok := simplify.AsAPIError(err); ok && apiErr.Class() == simplify.ClassAlreadyCaptured {
				return s.reconcileCapturedElsewhere(ctx, o)
			}
			s.addNote(ctx, o.ID, fmt.Sprintf("Gateway capture error: %s", apiErrorText(err)))
			s.countAction("capture", "error")
			return err
		}
		s.auditJSON("Capture Response", payment)

		if payment.PaymentStatus != simplify.PaymentStatusApproved {
			s.addNote(ctx, o.ID, "Capture declined")
			s.countAction("capture", "declined")
			return domainErrors.ErrPaymentDeclined
		}

		// Claim, status update and note commit or roll back together,
		// so a persistence failure never strands a claimed order.
		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			claimed, err := s.repo.ClaimCapture(txCtx, o.ID)
			if err != nil {
				return err
			}
			if !claimed {
				return domainErrors.NewStateViolation("capture", domainErrors.ErrAlreadyCaptured)
			}
			if err := o.MarkCaptured(payment.ID); err != nil {
				return err
			}
			if err := s.repo.Update(txCtx, o); err != nil {
				return err
			}
			return s.repo.AddNote(txCtx, o.ID, fmt.Sprintf(
				"Gateway captured amount %.2f (ID: %s)", o.Total, payment.ID))
		})
		if err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyCaptured) {
				s.addNote(ctx, o.ID, fmt.Sprintf(
					"Capture approved at the gateway (ID: %s) but the order was claimed concurrently; manual reconciliation required",
					payment.ID))
				s.countAction("capture", "conflict")
			}
			return err
		}
		s.countAction("capture", "approved")
		return nil
	})
}

// reconcileCapturedElsewhere handles the processor reporting that the
// authorization is already settled: the order is marked captured with
// no new capture transaction, and the action counts as a success.
func (s *GatewayService) reconcileCapturedElsewhere(ctx context.Context, o *order.Order) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		claimed, err := s.repo.ClaimCapture(txCtx, o.ID)
		if err != nil || !claimed {
			return err
		}
		if err := o.MarkCaptured(""); err != nil {
			return err
		}
		return s.repo.Update(txCtx, o)
	})
	if err != nil {
		return err
	}
	s.addNote(ctx, o.ID, "Payment is already captured.")
	s.countAction("capture", "reconciled")
	return nil
}

// Void reverses an uncaptured authorization and cancels the order.
func (s *GatewayService) Void(ctx context.Context, orderID uuid.UUID) error {
	if err := s.checkAvailability(); err != nil {
		return err
	}

	return s.locker.WithLock(ctx, "order:"+orderID.String(), func(ctx context.Context) error {
		o, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.checkManualActionPreconditions("void", o); err != nil {
			return err
		}

		authCode := o.AuthorizationCode()

		// The lookup is read-only, so transport blips are retried.
		// The reversal itself is never retried automatically.
		auth, err := retry.DoWithResult(ctx, retry.Config{
			MaxAttempts:  uint(s.cfg.Gateway.MaxRetries),
			InitialDelay: s.cfg.Gateway.RetryDelay,
			RetryIf: func(err error) bool {
				_, isAPIErr := simplify.AsAPIError(err)
				return !isAPIErr
			},
		}, func() (*simplify.Authorization, error) {
			started := time.Now()
			a, err := s.gateway.FindAuthorization(ctx, authCode)
			s.countGatewayCall("find_authorization", started, err)
			return a, err
		})
		if err != nil {
			s.addNote(ctx, o.ID, fmt.Sprintf("Gateway void error: %s", apiErrorText(err)))
			s.countAction("void", "error")
			return err
		}

		voidStarted := time.Now()
		err = s.gateway.VoidAuthorization(ctx, auth.ID)
		s.countGatewayCall("void_authorization", voidStarted, err)
		if err != nil {
			s.addNote(ctx, o.ID, fmt.Sprintf("Gateway void error: %s", apiErrorText(err)))
			s.countAction("void", "error")
			return err
		}
		s.auditJSON("Void Response", map[string]string{"authorization": auth.ID})

		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			claimed, err := s.repo.ClaimVoid(txCtx, o.ID)
			if err != nil {
				return err
			}
			if !claimed {
				return domainErrors.NewStateViolation("void", domainErrors.ErrAlreadyCaptured)
			}
			if err := o.MarkVoided(); err != nil {
				return err
			}
			if err := s.repo.Update(txCtx, o); err != nil {
				return err
			}
			return s.repo.AddNote(txCtx, o.ID, fmt.Sprintf("Gateway reverse authorization (ID: %s)", authCode))
		})
		if err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyCaptured) {
				s.addNote(ctx, o.ID, "Authorization reversed at the gateway but the order was captured concurrently; manual reconciliation required")
				s.countAction("void", "conflict")
			}
			return err
		}
		s.countAction("void", "approved")
		return nil
	})
}

// Refund refunds amount against the order's settled payment. Only the
// first field error of a gateway failure is surfaced to the platform.
func (s *GatewayService) Refund(ctx context.Context, orderID uuid.UUID, amount float64, reason string) error {
	if err := s.checkAvailability(); err != nil {
		return err
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	paymentID := o.PaymentID()
	if paymentID == "" {
		return domainErrors.NewDomainError(
			"refund_unavailable",
			"It is not possible to refund this order through this service. Please proceed with a refund in the gateway console.",
			domainErrors.ErrMissingPaymentID,
		)
	}

	if reason == "" {
		reason = fmt.Sprintf("Refund for Order #%s", o.Number)
	}

	req := simplify.RefundRequest{
		Amount:    money.MinorUnits(amount, s.cfg.Store.PriceDecimals),
		Payment:   paymentID,
		Reason:    reason,
		Reference: o.ID.String(),
	}

	s.auditJSON("Refund Request", req)
	started := time.Now()
	refund, err := s.gateway.CreateRefund(ctx, req)
	s.countGatewayCall("create_refund", started, err)
	if err != nil {
		s.countAction("refund", "error")
		if apiErr, ok := simplify.AsAPIError(err); ok {
			if fe := apiErr.FirstFieldError(); fe != nil {
				return &domainErrors.ValidationError{Field: fe.Field, Message: fe.Message, Code: fe.Code}
			}
		}
		return err
	}
	s.auditJSON("Refund Response", refund)

	if refund.PaymentStatus != simplify.PaymentStatusApproved {
		s.countAction("refund", "declined")
		return domainErrors.ErrRefundDeclined
	}

	s.addNote(ctx, o.ID, fmt.Sprintf("Gateway refund approved (ID: %s, Amount: %.2f)", refund.ID, amount))
	if amount >= o.Total && o.CanTransitionTo(order.StatusRefunded) {
		if err := o.MarkRefunded(); err == nil {
			if err := s.repo.Update(ctx, o); err != nil {
				return err
			}
		}
	}
	s.countAction("refund", "approved")
	return nil
}

// ReturnParams is what the hosted payment page posts back.
type ReturnParams struct {
	Reference string
	CardToken string
	Amount    int64
}

// ReturnResult tells the caller where to send the buyer. The HTTP
// handler always answers 200; failure is carried in the body.
type ReturnResult struct {
	RedirectURL string `json:"redirect_url"`
	Notice      string `json:"notice,omitempty"`
	Failed      bool   `json:"failed"`
}

// HandleReturn processes the hosted-page callback, dispatching
// strictly on the configured transaction mode.
func (s *GatewayService) HandleReturn(ctx context.Context, params ReturnParams) ReturnResult {
	if params.Reference == "" || params.CardToken == "" {
		s.countReturn("none", "invalid")
		return ReturnResult{RedirectURL: s.cfg.Platform.CartURL, Notice: "Invalid payment callback.", Failed: true}
	}

	orderID, err := uuid.Parse(params.Reference)
	if err != nil {
		s.countReturn(s.cfg.Gateway.TxnMode, "invalid")
		return ReturnResult{RedirectURL: s.cfg.Platform.CartURL, Notice: "Invalid payment callback.", Failed: true}
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		s.countReturn(s.cfg.Gateway.TxnMode, "invalid")
		return ReturnResult{RedirectURL: s.cfg.Platform.CartURL, Notice: "Order not found.", Failed: true}
	}

	switch s.cfg.Gateway.TxnMode {
	case config.TxnModePurchase:
		if err := s.DoPayment(ctx, o, params.Amount, params.CardToken); err != nil {
			s.failOrder(ctx, o, "Payment was declined by your gateway.")
			s.countReturn(config.TxnModePurchase, "declined")
			return ReturnResult{
				RedirectURL: s.cfg.Platform.CartURL,
				Notice:      declineNotice(err),
				Failed:      true,
			}
		}
		s.countReturn(config.TxnModePurchase, "approved")

	case config.TxnModeAuthorize:
		if err := s.Authorize(ctx, o, params.Amount, params.CardToken); err != nil {
			// Authorize fails the order itself on gateway outcomes;
			// pre-gateway rejections (amount mismatch, missing token)
			// are failed here so no authorize failure leaves the
			// order pending.
			if o.Status != order.StatusFailed {
				s.failOrder(ctx, o, "Payment was declined by your gateway.")
			}
			s.countReturn(config.TxnModeAuthorize, "declined")
			return ReturnResult{
				RedirectURL: s.cfg.Platform.CartURL,
				Notice:      "Payment was declined by your gateway - please try another card.",
				Failed:      true,
			}
		}
		s.countReturn(config.TxnModeAuthorize, "approved")
	}

	return ReturnResult{RedirectURL: s.returnURL(o)}
}

// GetOrder loads an order with its notes.
func (s *GatewayService) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, []order.Note, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	notes, err := s.repo.ListNotes(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return o, notes, nil
}

// CreateOrder registers a platform order for payment, applying the
// configured handling fee on top of the cart total.
func (s *GatewayService) CreateOrder(ctx context.Context, o *order.Order) error {
	if s.cfg.Gateway.Fee.Enabled && s.cfg.Gateway.Fee.Amount > 0 {
		o.Total += checkout.HandlingFee(o.Total, s.cfg.Gateway.Fee.AmountType, s.cfg.Gateway.Fee.Amount)
	}
	return s.repo.Create(ctx, o)
}

// AuditEntries decrypts the audit trail for the admin download.
func (s *GatewayService) AuditEntries() ([]string, error) {
	return s.audit.Read()
}

func (s *GatewayService) checkAvailability() error {
	if !s.cfg.Gateway.Enabled {
		return domainErrors.ErrGatewayDisabled
	}
	if !s.cfg.Gateway.HasKeys() {
		return domainErrors.ErrMissingCredentials
	}
	return nil
}

// checkManualActionPreconditions guards capture and void: right
// payment method, order still processing, capture flag exactly "0"
// and an authorization on file. Any violation is fatal to the action
// and leaves the order untouched.
func (s *GatewayService) checkManualActionPreconditions(action string, o *order.Order) error {
	if o.PaymentMethod != order.PaymentMethodSimplify {
		return domainErrors.NewStateViolation(action, domainErrors.ErrWrongPaymentMethod)
	}
	if o.Status != order.StatusProcessing {
		return domainErrors.NewStateViolation(action, domainErrors.ErrInvalidStateTransition)
	}
	if o.Captured() != "0" {
		if action == "void" {
			return domainErrors.NewStateViolation(action, domainErrors.ErrAlreadyVoided)
		}
		return domainErrors.NewStateViolation(action, domainErrors.ErrAlreadyCaptured)
	}
	if o.AuthorizationCode() == "" {
		return domainErrors.NewStateViolation(action, domainErrors.ErrMissingAuthorization)
	}
	return nil
}

// createCustomer registers the buyer at the processor. Best effort: a
// failure is logged and the payment proceeds without a customer id.
func (s *GatewayService) createCustomer(ctx context.Context, o *order.Order) string {
	started := time.Now()
	customer, err := s.gateway.CreateCustomer(ctx, simplify.CustomerRequest{
		Email:     o.Email,
		Name:      o.FullName(),
		Reference: o.ID.String(),
	})
	s.countGatewayCall("create_customer", started, err)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID.String()).Msg("customer creation failed, proceeding without")
		return ""
	}
	return customer.ID
}

func (s *GatewayService) callPayment(ctx context.Context, req simplify.PaymentRequest) (*simplify.Payment, error) {
	started := time.Now()
	payment, err := s.gateway.CreatePayment(ctx, req)
	s.countGatewayCall("create_payment", started, err)
	return payment, err
}

func (s *GatewayService) builder(o *order.Order) *checkout.Builder {
	return checkout.NewBuilder(o, checkout.StoreAddress{
		Line1:   s.cfg.Store.AddressLine1,
		Line2:   s.cfg.Store.AddressLine2,
		City:    s.cfg.Store.City,
		Zip:     s.cfg.Store.Zip,
		Country: s.cfg.Store.Country,
		State:   s.cfg.Store.State,
	})
}

func (s *GatewayService) failOrder(ctx context.Context, o *order.Order, note string) {
	if o.CanTransitionTo(order.StatusFailed) {
		if err := o.MarkFailed(); err == nil {
			if err := s.repo.Update(ctx, o); err != nil {
				s.logger.Error().Err(err).Str("order_id", o.ID.String()).Msg("failed to persist order failure")
			}
		}
	}
	s.addNote(ctx, o.ID, note)
}

func (s *GatewayService) addNote(ctx context.Context, orderID uuid.UUID, content string) {
	if err := s.repo.AddNote(ctx, orderID, content); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to add order note")
	}
}

func (s *GatewayService) auditJSON(label string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", payload))
	}
	result := "ok"
	if err := s.audit.Log(label, string(raw)); err != nil {
		result = "error"
		s.logger.Error().Err(err).Str("label", label).Msg("audit log write failed")
	}
	if s.metrics != nil && s.audit.Enabled() {
		s.metrics.AuditLogWritesTotal.WithLabelValues(result).Inc()
	}
}

func (s *GatewayService) countAction(action, outcome string) {
	if s.metrics != nil {
		s.metrics.OrderActionsTotal.WithLabelValues(action, outcome).Inc()
	}
}

func (s *GatewayService) countReturn(mode, outcome string) {
	if s.metrics != nil {
		s.metrics.ReturnCallbacksTotal.WithLabelValues(mode, outcome).Inc()
	}
}

func (s *GatewayService) countGatewayCall(operation string, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		if _, ok := simplify.AsAPIError(err); ok {
			result = "api_error"
		} else {
			result = "transport_error"
		}
	}
	s.metrics.GatewayCallsTotal.WithLabelValues(operation, result).Inc()
	s.metrics.GatewayCallDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (s *GatewayService) returnURL(o *order.Order) string {
	u, err := url.Parse(s.cfg.Platform.ReturnURL)
	if err != nil {
		return s.cfg.Platform.ReturnURL
	}
	q := u.Query()
	q.Set("order", o.ID.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// apiErrorText formats a gateway error for order notes, spelling out
// each field error.
func apiErrorText(err error) string {
	apiErr, ok := simplify.AsAPIError(err)
	if !ok || len(apiErr.FieldErrors) == 0 {
		return err.Error()
	}
	text := ""
	for _, fe := range apiErr.FieldErrors {
		text += fmt.Sprintf(" %s: %q (%s)", fe.Field, fe.Message, fe.Code)
	}
	return text[1:]
}

// declineNotice picks the buyer-facing message for a failed purchase:
// the processor's own message when there is one, a generic notice
// otherwise.
func declineNotice(err error) string {
	if apiErr, ok := simplify.AsAPIError(err); ok {
		if fe := apiErr.FirstFieldError(); fe != nil {
			return fe.Message
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return "Your payment was declined."
}
