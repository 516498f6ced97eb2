package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"spanner/internal/domain"
	"spanner/internal/gateway"
	"spanner/internal/ledger"
	"spanner/internal/notify"
	"spanner/internal/testutil"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testKeySecret     = "key_secret"
	testWebhookSecret = "webhook_secret"
)

// fakeGateway is an in-memory provider.
type fakeGateway struct {
	mu        sync.Mutex
	nextID    string
	orders    map[string]*gateway.Order
	payments  map[string]*gateway.Payment
	requests  []gateway.OrderRequest
	createErr error
	fetchErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: map[string]*gateway.Order{}, payments: map[string]*gateway.Payment{}}
}

func (f *fakeGateway) CreateOrder(_ context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := f.nextID
	if id == "" {
		id = fmt.Sprintf("order_%d", len(f.requests))
	}
	f.nextID = ""
	o := &gateway.Order{ID: id, Amount: req.Amount, AmountDue: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}
	f.orders[id] = o
	return o, nil
}

func (f *fakeGateway) FetchOrder(_ context.Context, id string) (*gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, &gateway.Error{Op: "orders.fetch", StatusCode: 400, Description: "The id provided does not exist"}
	}
	return o, nil
}

func (f *fakeGateway) FetchOrderPayments(_ context.Context, id string) ([]gateway.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []gateway.Payment
	for _, p := range f.payments {
		if p.OrderID == id {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeGateway) FetchPayment(_ context.Context, id string) (*gateway.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, &gateway.Error{Op: "payments.fetch", StatusCode: 400, Description: "The id provided does not exist"}
	}
	return p, nil
}

func (f *fakeGateway) CreateCustomer(_ context.Context, req gateway.CustomerRequest) (*gateway.Customer, error) {
	return &gateway.Customer{ID: "cust_1"}, nil
}

func (f *fakeGateway) capture(orderID, paymentID string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[paymentID] = &gateway.Payment{
		ID:       paymentID,
		OrderID:  orderID,
		Amount:   decimal.NewFromInt(amount),
		Currency: "INR",
		Status:   gateway.PaymentCaptured,
		Method:   "upi",
		Captured: true,
	}
}

func (f *fakeGateway) authorize(orderID, paymentID string, amount int64) {
	f.capture(orderID, paymentID, amount)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[paymentID].Status = gateway.PaymentAuthorized
	f.payments[paymentID].Captured = false
}

type harness struct {
	svc  *Service
	gw   *fakeGateway
	db   *gorm.DB
	user domain.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gdb := testutil.NewDB(t)
	store := ledger.NewStore(gdb)
	gw := newFakeGateway()
	svc := NewService(store, gw, NewVerifier(gw, testKeySecret, testWebhookSecret), notify.New(gdb, store, nil))
	return &harness{svc: svc, gw: gw, db: gdb, user: testutil.SeedUser(t, gdb, "asha", domain.RoleUser)}
}

func (h *harness) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	var w domain.Wallet
	require.NoError(t, h.db.Where("user_id = ?", h.user.ID).First(&w).Error)
	return w.Balance
}

func (h *harness) txCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&domain.WalletTransaction{}).Where("user_id = ?", h.user.ID).Count(&n).Error)
	return n
}

func (h *harness) notifications(t *testing.T, kind notify.Kind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&domain.Notification{}).Where("user_id = ? AND type = ?", h.user.ID, string(kind)).Count(&n).Error)
	return n
}

func webhookBody(t *testing.T, event, orderID, paymentID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"entity": "event",
		"event":  event,
		"payload": map[string]any{
			"payment": map[string]any{"entity": map[string]any{
				"id":                paymentID,
				"order_id":          orderID,
				"amount":            50000,
				"status":            "captured",
				"method":            "upi",
				"notes":             []any{},
				"error_description": "Payment was cancelled by the bank",
			}},
		},
	})
	require.NoError(t, err)
	return body
}

func sign(body []byte) string {
	return signBytes([]byte(testWebhookSecret), body)
}

func TestCreateTopupBounds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, amount := range []string{"9", "50001", "9.99", "10.005"} {
		_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, amount)
	}
	assert.Empty(t, h.gw.requests, "invalid amounts never reach the gateway")

	for _, amount := range []int64{10, 50000} {
		order, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(amount))
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCreated, order.Status)
	}
}

func TestCreateTopupOrderRequest(t *testing.T) {
	h := newHarness(t)
	h.gw.nextID = "order_abc"

	order, err := h.svc.CreateTopup(context.Background(), h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.RazorpayOrderID)

	require.Len(t, h.gw.requests, 1)
	req := h.gw.requests[0]
	assert.Equal(t, "INR", req.Currency)
	assert.Regexp(t, fmt.Sprintf(`^wallet_%d_[0-9a-f-]{8}$`, h.user.ID), req.Receipt)
	assert.Equal(t, req.Receipt, order.Receipt)
	assert.Equal(t, fmt.Sprint(h.user.ID), req.Notes["user_id"])
	assert.Equal(t, "wallet_topup", req.Notes["purpose"])

	var stored domain.PaymentOrder
	require.NoError(t, h.db.Where("razorpay_order_id = ?", "order_abc").First(&stored).Error)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(500)))
}

func TestCreateTopupGatewayFailureStoresNothing(t *testing.T) {
	h := newHarness(t)
	h.gw.createErr = &gateway.Error{Op: "orders.create", StatusCode: 400, Description: "Authentication failed"}

	_, err := h.svc.CreateTopup(context.Background(), h.user.ID, decimal.NewFromInt(100))
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Authentication failed", gwErr.Message())

	var count int64
	require.NoError(t, h.db.Model(&domain.PaymentOrder{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifiedPaymentCreditsWallet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_abc"

	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	h.gw.capture("order_abc", "pay_1", 500)

	st, err := h.svc.VerifyPayment(ctx, h.user.ID, "order_abc", "pay_1", Sign(testKeySecret, "order_abc", "pay_1"))
	require.NoError(t, err)
	assert.False(t, st.AlreadySettled)
	assert.True(t, st.NewBalance.Equal(decimal.NewFromInt(500)))
	assert.True(t, st.Transaction.BalanceBefore.IsZero())
	assert.True(t, st.Transaction.BalanceAfter.Equal(decimal.NewFromInt(500)))

	assert.True(t, h.balance(t).Equal(decimal.NewFromInt(500)))
	assert.EqualValues(t, 1, h.txCount(t))
	assert.EqualValues(t, 1, h.notifications(t, notify.KindPaymentSuccess))
	testutil.RequireLedgerReconciles(t, h.db, h.user.ID)
}

func TestTamperedSignatureCreditsNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_abc"

	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	h.gw.capture("order_abc", "pay_1", 500)

	sig := []byte(Sign(testKeySecret, "order_abc", "pay_1"))
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	_, err = h.svc.VerifyPayment(ctx, h.user.ID, "order_abc", "pay_1", string(sig))
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)

	var order domain.PaymentOrder
	require.NoError(t, h.db.Where("razorpay_order_id = ?", "order_abc").First(&order).Error)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	assert.Zero(t, h.txCount(t))
}

func TestVerifyRejectsPaymentFromAnotherOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_abc"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	h.gw.capture("order_cheap", "pay_cheap", 10)

	_, err = h.svc.VerifyPayment(ctx, h.user.ID, "order_abc", "pay_cheap", Sign(testKeySecret, "order_abc", "pay_cheap"))
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	assert.Zero(t, h.txCount(t))
}

func TestVerifyFetchFailureLeavesOrderOpen(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_abc"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	h.gw.fetchErr = &gateway.Error{Op: "payments.fetch"}

	_, err = h.svc.VerifyPayment(ctx, h.user.ID, "order_abc", "pay_1", Sign(testKeySecret, "order_abc", "pay_1"))
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)

	var order domain.PaymentOrder
	require.NoError(t, h.db.Where("razorpay_order_id = ?", "order_abc").First(&order).Error)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
}

func TestVerifyOtherUsersOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_abc"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	h.gw.capture("order_abc", "pay_1", 500)

	intruder := testutil.SeedUser(t, h.db, "intruder", domain.RoleUser)
	_, err = h.svc.VerifyPayment(ctx, intruder.ID, "order_abc", "pay_1", Sign(testKeySecret, "order_abc", "pay_1"))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Zero(t, h.txCount(t))
}

func TestWebhookRedeliveryCreditsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_abc"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	h.gw.capture("order_abc", "pay_1", 500)

	_, err = h.svc.VerifyPayment(ctx, h.user.ID, "order_abc", "pay_1", Sign(testKeySecret, "order_abc", "pay_1"))
	require.NoError(t, err)

	body := webhookBody(t, EventPaymentCaptured, "order_abc", "pay_1")
	first, err := h.svc.HandleWebhook(ctx, body, sign(body))
	require.NoError(t, err)
	assert.Equal(t, ActionAlreadySettled, first.Action)
	second, err := h.svc.HandleWebhook(ctx, body, sign(body))
	require.NoError(t, err)
	assert.Equal(t, ActionAlreadySettled, second.Action)
	assert.Equal(t, h.user.ID, second.UserID)

	assert.True(t, h.balance(t).Equal(decimal.NewFromInt(500)))
	assert.EqualValues(t, 1, h.txCount(t))
	assert.EqualValues(t, 1, h.notifications(t, notify.KindPaymentSuccess))
	testutil.RequireLedgerReconciles(t, h.db, h.user.ID)
}

func TestWebhookSettlesWithoutCallback(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_hook"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(250))
	require.NoError(t, err)

	body := webhookBody(t, EventOrderPaid, "order_hook", "pay_hook")
	res, err := h.svc.HandleWebhook(ctx, body, sign(body))
	require.NoError(t, err)
	assert.Equal(t, ActionSettled, res.Action)
	assert.Equal(t, h.user.ID, res.UserID)
	assert.True(t, h.balance(t).Equal(decimal.NewFromInt(250)))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newHarness(t)
	body := webhookBody(t, EventPaymentCaptured, "order_abc", "pay_1")

	_, err := h.svc.HandleWebhook(context.Background(), body, "")
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	_, err = h.svc.HandleWebhook(context.Background(), body, Sign(testKeySecret, "order_abc", "pay_1"))
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
}

func TestWebhookFailureAndUnknownEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_fail"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	failed := webhookBody(t, EventPaymentFailed, "order_fail", "pay_fail")
	res, err := h.svc.HandleWebhook(ctx, failed, sign(failed))
	require.NoError(t, err)
	assert.Equal(t, ActionFailed, res.Action)

	var order domain.PaymentOrder
	require.NoError(t, h.db.Where("razorpay_order_id = ?", "order_fail").First(&order).Error)
	assert.Equal(t, domain.OrderStatusFailed, order.Status)
	assert.Equal(t, "Payment was cancelled by the bank", order.FailureReason)
	assert.EqualValues(t, 1, h.notifications(t, notify.KindPaymentFailed))

	// A late capture for a failed order is acknowledged but never credited
	late := webhookBody(t, EventPaymentCaptured, "order_fail", "pay_late")
	res, err = h.svc.HandleWebhook(ctx, late, sign(late))
	require.NoError(t, err)
	assert.Equal(t, ActionIgnored, res.Action)
	assert.Zero(t, h.txCount(t))

	unknown := webhookBody(t, "refund.created", "order_fail", "pay_fail")
	res, err = h.svc.HandleWebhook(ctx, unknown, sign(unknown))
	require.NoError(t, err)
	assert.Equal(t, ActionIgnored, res.Action)

	stranger := webhookBody(t, EventPaymentCaptured, "order_elsewhere", "pay_x")
	res, err = h.svc.HandleWebhook(ctx, stranger, sign(stranger))
	require.NoError(t, err)
	assert.Zero(t, res.UserID)
}

func TestHandleFailedPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_x"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, h.svc.HandleFailedPayment(ctx, h.user.ID, "order_x", ""))
	require.NoError(t, h.svc.HandleFailedPayment(ctx, h.user.ID, "order_x", "again"), "repeat is a no-op")

	var order domain.PaymentOrder
	require.NoError(t, h.db.Where("razorpay_order_id = ?", "order_x").First(&order).Error)
	assert.Equal(t, domain.OrderStatusFailed, order.Status)
	assert.Equal(t, "Payment failed", order.FailureReason)
	assert.EqualValues(t, 1, h.notifications(t, notify.KindPaymentFailed))
	assert.Zero(t, h.txCount(t))

	assert.ErrorIs(t, h.svc.HandleFailedPayment(ctx, h.user.ID, "order_missing", ""), domain.ErrOrderNotFound)
}

func TestWithdrawDebitsImmediately(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_abc"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	h.gw.capture("order_abc", "pay_1", 500)
	_, err = h.svc.VerifyPayment(ctx, h.user.ID, "order_abc", "pay_1", Sign(testKeySecret, "order_abc", "pay_1"))
	require.NoError(t, err)

	bank := domain.BankDetails{AccountHolderName: "Asha", AccountNumber: "123456789012", IFSC: "HDFC0001234", BankName: "HDFC"}
	wallet, txn, err := h.svc.Withdraw(ctx, h.user.ID, decimal.NewFromInt(200), bank)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, domain.TxTypeDebit, txn.Type)
	assert.Equal(t, domain.TxStatusPending, txn.Status)
	assert.EqualValues(t, 2, h.txCount(t))

	_, _, err = h.svc.Withdraw(ctx, h.user.ID, decimal.NewFromInt(99), bank)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, _, err = h.svc.Withdraw(ctx, h.user.ID, decimal.NewFromInt(301), bank)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	res, err := h.svc.ResolveWithdrawal(ctx, txn.ID, domain.TxStatusFailed)
	require.NoError(t, err)
	require.NotNil(t, res.Reversal)
	assert.True(t, h.balance(t).Equal(decimal.NewFromInt(500)))
	testutil.RequireLedgerReconciles(t, h.db, h.user.ID)

	// The failed withdrawal and its reversal leave the rollup at the top-up alone
	a, err := h.svc.Analytics(ctx, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Transactions)
	assert.True(t, a.TotalCredits.Equal(decimal.NewFromInt(500)))
	assert.True(t, a.TotalDebits.IsZero())
	assert.True(t, a.Net.Equal(h.balance(t)))
}

func TestBalanceAlerts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, _, err := h.svc.RecordEarning(ctx, h.user.ID, decimal.NewFromInt(50), "job_1", "Plumbing job")
	require.NoError(t, err)
	assert.EqualValues(t, 1, h.notifications(t, notify.KindLowBalance))
	assert.Zero(t, h.notifications(t, notify.KindLargeTransaction))

	_, _, _, err = h.svc.RecordEarning(ctx, h.user.ID, decimal.NewFromInt(6000), "job_2", "Rewiring job")
	require.NoError(t, err)
	assert.EqualValues(t, 1, h.notifications(t, notify.KindLargeTransaction))
	assert.EqualValues(t, 1, h.notifications(t, notify.KindLowBalance))

	_, _, dup, err := h.svc.RecordEarning(ctx, h.user.ID, decimal.NewFromInt(6000), "job_2", "Rewiring job")
	require.NoError(t, err)
	assert.True(t, dup)
	assert.EqualValues(t, 1, h.notifications(t, notify.KindLargeTransaction))
	assert.True(t, h.balance(t).Equal(decimal.NewFromInt(6050)))
}

func TestReconcile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_r"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(300))
	require.NoError(t, err)

	st, err := h.svc.Reconcile(ctx, "order_r")
	require.NoError(t, err)
	assert.Nil(t, st, "no payment yet")

	h.gw.capture("order_r", "pay_r", 300)
	st, err = h.svc.Reconcile(ctx, "order_r")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.False(t, st.AlreadySettled)
	assert.True(t, h.balance(t).Equal(decimal.NewFromInt(300)))

	st, err = h.svc.Reconcile(ctx, "order_r")
	require.NoError(t, err)
	assert.True(t, st.AlreadySettled)
	assert.EqualValues(t, 1, h.txCount(t))

	_, err = h.svc.Reconcile(ctx, "order_none")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUncapturedPaymentIsNotCredited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.gw.nextID = "order_auth"
	_, err := h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(400))
	require.NoError(t, err)
	h.gw.authorize("order_auth", "pay_auth", 400)

	_, err = h.svc.VerifyPayment(ctx, h.user.ID, "order_auth", "pay_auth", Sign(testKeySecret, "order_auth", "pay_auth"))
	assert.ErrorIs(t, err, domain.ErrPaymentNotCaptured)

	st, err := h.svc.Reconcile(ctx, "order_auth")
	require.NoError(t, err)
	assert.Nil(t, st)

	body, err := json.Marshal(map[string]any{
		"event": EventOrderPaid,
		"payload": map[string]any{"payment": map[string]any{"entity": map[string]any{
			"id": "pay_auth", "order_id": "order_auth", "status": "authorized", "method": "card",
		}}},
	})
	require.NoError(t, err)
	res, err := h.svc.HandleWebhook(ctx, body, sign(body))
	require.NoError(t, err)
	assert.Equal(t, ActionIgnored, res.Action)

	assert.Zero(t, h.txCount(t))
	var order domain.PaymentOrder
	require.NoError(t, h.db.Where("razorpay_order_id = ?", "order_auth").First(&order).Error)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)

	h.gw.capture("order_auth", "pay_auth", 400)
	st, err = h.svc.Reconcile(ctx, "order_auth")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.True(t, h.balance(t).Equal(decimal.NewFromInt(400)))
}

func TestSnapshotAndOrderDetails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	snap, err := h.svc.Snapshot(ctx, h.user.ID)
	require.NoError(t, err)
	assert.True(t, snap.Wallet.Balance.IsZero())
	assert.Empty(t, snap.RecentTransactions)
	assert.Len(t, snap.PaymentMethods, 4)

	h.gw.nextID = "order_d"
	_, err = h.svc.CreateTopup(ctx, h.user.ID, decimal.NewFromInt(120))
	require.NoError(t, err)
	h.gw.capture("order_d", "pay_d", 120)

	details, err := h.svc.OrderDetails(ctx, h.user.ID, "order_d")
	require.NoError(t, err)
	assert.Equal(t, "order_d", details.Remote.ID)
	require.Len(t, details.Payments, 1)
	assert.Equal(t, "pay_d", details.Payments[0].ID)

	other := testutil.SeedUser(t, h.db, "other", domain.RoleUser)
	_, err = h.svc.OrderDetails(ctx, other.ID, "order_d")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
