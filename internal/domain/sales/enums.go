package sales

// DeliveryStatus represents where a sale is in its delivery lifecycle
type DeliveryStatus string

const (
	DeliveryOrdered      DeliveryStatus = "ordered"
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryNotDelivered DeliveryStatus = "notDelivered"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryOrdered, DeliveryDelivered, DeliveryNotDelivered:
		return true
	}
	return false
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the transition is one of the modelled
// ones. Setting the same status again is always allowed.
func (s DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case DeliveryOrdered:
		return target == DeliveryDelivered || target == DeliveryNotDelivered
	case DeliveryNotDelivered:
		return target == DeliveryDelivered || target == DeliveryOrdered
	case DeliveryDelivered:
		return target == DeliveryNotDelivered
	}
	return false
}

// PaymentMethod is how the client paid
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "espece"
	PaymentCard  PaymentMethod = "card"
	PaymentOther PaymentMethod = "other"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// SoldBy is the unit of sale of a line
type SoldBy string

const (
	SoldByUnit   SoldBy = "unit"
	SoldByCarton SoldBy = "carton"
)

// IsValid checks if the value is a valid SoldBy
func (s SoldBy) IsValid() bool {
	return s == SoldByUnit || s == SoldByCarton
}
