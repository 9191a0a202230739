package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/model"
	"github.com/blues/giftreg/internal/validation"
	"github.com/google/uuid"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/merchantorder"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"
)

const defaultAPIHost = "api.mercadopago.com"

var errNoAccessToken = errors.New("access token not configured")

type preferenceAPI interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentAPI interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
	Search(ctx context.Context, request payment.SearchRequest) (*payment.SearchResponse, error)
}

type merchantOrderAPI interface {
	Get(ctx context.Context, id int) (*merchantorder.Response, error)
}

// MercadoPago 支付网关适配器，每个进程构造一次
type MercadoPago struct {
	cfg         config.GatewayConfig
	siteBaseURL string
	maxAmount   decimal.Decimal
	log         *logger.Logger

	initErr     error
	preferences preferenceAPI
	payments    paymentAPI
	orders      merchantOrderAPI
}

// NewMercadoPago 创建网关适配器
func NewMercadoPago(cfg config.GatewayConfig, siteBaseURL string, log *logger.Logger) *MercadoPago {
	m := &MercadoPago{
		cfg:         cfg,
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
		maxAmount:   cfg.MaxAmountDecimal(),
		log:         log.Named("gateway"),
	}

	if cfg.AccessToken == "" {
		m.initErr = errNoAccessToken
		m.log.Warn("Mercado Pago access token not configured, card payments disabled")
		return m
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: newTransport(cfg.APIBaseURL, http.DefaultTransport),
	}
	sdkCfg, err := mpconfig.New(cfg.AccessToken, mpconfig.WithHTTPClient(client))
	if err != nil {
		m.initErr = fmt.Errorf("init sdk: %w", err)
		m.log.Error("Failed to initialize Mercado Pago SDK: %v", err)
		return m
	}
	m.preferences = preference.NewClient(sdkCfg)
	m.payments = payment.NewClient(sdkCfg)
	m.orders = merchantorder.NewClient(sdkCfg)
	return m
}

// transport 为写请求补充幂等键，并把 SDK 的固定 API 地址改写为配置地址
type transport struct {
	target *url.URL
	next   http.RoundTripper
}

func newTransport(apiBaseURL string, next http.RoundTripper) *transport {
	t := &transport{next: next}
	if u, err := url.Parse(apiBaseURL); err == nil && u.Host != "" && u.Host != defaultAPIHost {
		t.target = u
	}
	return t
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Method == http.MethodPost && req.Header.Get("X-Idempotency-Key") == "" {
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}
	if t.target != nil {
		req.URL.Scheme = t.target.Scheme
		req.URL.Host = t.target.Host
		req.Host = t.target.Host
	}
	return t.next.RoundTrip(req)
}

// Payer 规范化后的付款人证件与电话
type Payer struct {
	TaxID string
	Phone string
}

// PreparePayer 校验卡支付所需的付款人信息，失败时不会发起网络请求
func PreparePayer(taxID, phone string) (Payer, error) {
	cpf, err := validation.TaxID(taxID)
	if err != nil {
		return Payer{}, err
	}
	p, err := validation.Phone(phone)
	if err != nil {
		return Payer{}, err
	}
	return Payer{TaxID: cpf, Phone: p}, nil
}

// CreatePreference 创建支付偏好，返回可跳转的支付链接
func (m *MercadoPago) CreatePreference(ctx context.Context, contribution *model.ContributionModel, gift *model.GiftModel) (*Preference, error) {
	if !contribution.Amount.IsPositive() {
		return nil, apperr.Validation("amount", "must be greater than zero")
	}
	if contribution.Amount.GreaterThan(m.maxAmount) {
		return nil, apperr.Validation("amount", fmt.Sprintf("must not exceed %s", m.maxAmount.StringFixed(2)))
	}
	payer, err := PreparePayer(deref(contribution.PayerTaxId), deref(contribution.PayerPhone))
	if err != nil {
		return nil, err
	}
	if m.initErr != nil {
		return nil, apperr.Gateway("create preference", m.initErr)
	}

	resp, err := m.preferences.Create(ctx, m.buildPreferenceRequest(contribution, gift, payer))
	if err != nil {
		return nil, apperr.Gateway("create preference", err)
	}

	redirect := resp.InitPoint
	if m.cfg.Sandbox && resp.SandboxInitPoint != "" {
		redirect = resp.SandboxInitPoint
	}
	if redirect == "" {
		redirect = resp.SandboxInitPoint
	}
	if resp.ID == "" || redirect == "" {
		m.log.Error("Preference for contribution %d returned no redirect handle", contribution.Id)
		return nil, apperr.Gateway("create preference", fmt.Errorf("no redirect handle in response"))
	}

	m.log.Info("Created preference %s for contribution %d", resp.ID, contribution.Id)
	return &Preference{ID: resp.ID, RedirectURL: redirect}, nil
}

func (m *MercadoPago) buildPreferenceRequest(c *model.ContributionModel, g *model.GiftModel, payer Payer) preference.Request {
	ref := strconv.FormatInt(c.Id, 10)
	query := "?contribution_id=" + url.QueryEscape(ref)

	return preference.Request{
		Items: []preference.ItemRequest{{
			Title:       "Presente: " + g.Name,
			Description: "Contribuição para " + g.Description,
			Quantity:    1,
			CurrencyID:  "BRL",
			UnitPrice:   c.Amount.InexactFloat64(),
		}},
		Payer: &preference.PayerRequest{
			Name:  c.PayerName,
			Email: c.PayerEmail,
			Identification: &preference.IdentificationRequest{
				Type:   "CPF",
				Number: payer.TaxID,
			},
			Phone: &preference.PhoneRequest{
				AreaCode: payer.Phone[:2],
				Number:   payer.Phone[2:],
			},
		},
		BackURLs: &preference.BackURLsRequest{
			Success: m.siteBaseURL + "/obrigado" + query,
			Failure: m.siteBaseURL + "/erro" + query,
			Pending: m.siteBaseURL + "/pendente" + query,
		},
		NotificationURL:     m.notificationURL(),
		ExternalReference:   ref,
		StatementDescriptor: m.cfg.StatementDescriptor,
	}
}

// notificationURL 本地地址收不到回调，使用配置的占位地址
func (m *MercadoPago) notificationURL() string {
	if isLoopback(m.siteBaseURL) {
		return m.cfg.FallbackNotifyURL
	}
	return m.siteBaseURL + "/webhook/mercadopago"
}

func isLoopback(base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return true
	}
	host := u.Hostname()
	return host == "" || host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// GetPayment 查询支付的权威状态
func (m *MercadoPago) GetPayment(ctx context.Context, id string) (*Payment, error) {
	paymentID, err := resourceID("payment_id", id)
	if err != nil {
		return nil, err
	}
	if m.initErr != nil {
		return nil, apperr.Gateway("get payment", m.initErr)
	}
	resp, err := m.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, apperr.Gateway("get payment", err)
	}
	p := toPayment(*resp)
	return &p, nil
}

// GetMerchantOrder 查询订单及其下的支付
func (m *MercadoPago) GetMerchantOrder(ctx context.Context, id string) (*MerchantOrder, error) {
	orderID, err := resourceID("merchant_order_id", id)
	if err != nil {
		return nil, err
	}
	if m.initErr != nil {
		return nil, apperr.Gateway("get merchant order", m.initErr)
	}
	resp, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, apperr.Gateway("get merchant order", err)
	}
	return toMerchantOrder(resp), nil
}

// SearchPayments 按 external_reference 查询支付
func (m *MercadoPago) SearchPayments(ctx context.Context, externalReference string) ([]Payment, error) {
	if m.initErr != nil {
		return nil, apperr.Gateway("search payments", m.initErr)
	}
	resp, err := m.payments.Search(ctx, payment.SearchRequest{
		Filters: map[string]string{
			"external_reference": externalReference,
			"sort":               "date_created",
			"criteria":           "asc",
		},
	})
	if err != nil {
		return nil, apperr.Gateway("search payments", err)
	}
	results := make([]Payment, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, toPayment(r))
	}
	return results, nil
}

// resourceID 网关资源ID均为正整数
func resourceID(field, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, apperr.Validation(field, "not a numeric id: "+raw)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
