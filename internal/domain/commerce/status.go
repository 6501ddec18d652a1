package commerce

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status has no outgoing transitions
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// Same-state requests are not transitions and are resolved by the guard.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false
	}
	return false
}

// SalesOrderStatus represents the status of a sales order
type SalesOrderStatus string

const (
	SalesOrderStatusPending   SalesOrderStatus = "PENDING"
	SalesOrderStatusConfirmed SalesOrderStatus = "CONFIRMED"
	SalesOrderStatusDelivered SalesOrderStatus = "DELIVERED"
	SalesOrderStatusCancelled SalesOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SalesOrderStatus
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case SalesOrderStatusPending, SalesOrderStatusConfirmed,
		SalesOrderStatusDelivered, SalesOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SalesOrderStatus
func (s SalesOrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status has no outgoing transitions
func (s SalesOrderStatus) IsTerminal() bool {
	return s == SalesOrderStatusDelivered || s == SalesOrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s SalesOrderStatus) CanTransitionTo(target SalesOrderStatus) bool {
	switch s {
	case SalesOrderStatusPending:
		return target == SalesOrderStatusConfirmed || target == SalesOrderStatusCancelled
	case SalesOrderStatusConfirmed:
		return target == SalesOrderStatusDelivered || target == SalesOrderStatusCancelled
	case SalesOrderStatusDelivered, SalesOrderStatusCancelled:
		return false
	}
	return false
}

// RealizedPurchaseStatuses are the purchase statuses counted in realized
// monetary totals (economically completed transactions).
func RealizedPurchaseStatuses() []PurchaseOrderStatus {
	return []PurchaseOrderStatus{PurchaseOrderStatusConfirmed, PurchaseOrderStatusReceived}
}

// RealizedSalesStatuses are the sales statuses counted in realized totals.
func RealizedSalesStatuses() []SalesOrderStatus {
	return []SalesOrderStatus{SalesOrderStatusConfirmed, SalesOrderStatusDelivered}
}

// PaymentMethod represents how a document is paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodPix          PaymentMethod = "PIX"
	PaymentMethodCheck        PaymentMethod = "CHECK"
)

// IsValid checks if the payment method belongs to the closed enumeration
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodBankTransfer, PaymentMethodPix, PaymentMethodCheck:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (p PaymentMethod) String() string {
	return string(p)
}
