package checkout

// FlowState is everything one staff checkout remembers between steps. The caller
// holds it and passes it to every operation. A point redemption is only referenced
// by id; the redemption itself stays in the RedemptionStore.
type FlowState struct {
	UserID        string `json:"user_id"`
	StaffDiscount bool   `json:"staff_discount"`
	MembershipID  string `json:"membership_id,omitempty"`
	RedemptionID  string `json:"redemption_id,omitempty"`
	// NotificationSent stops a second receipt for the same flow.
	NotificationSent bool `json:"notification_sent"`
}

// end resets the flow after a committed sale so nothing carries over to the next customer.
func (s *FlowState) end() {
	*s = FlowState{UserID: s.UserID}
}
