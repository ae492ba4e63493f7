package config

const defaultRenewDaysVar = "DEFAULT_RENEW_DAYS"

type Tickets struct {
	values FileValues
}

var _ TicketConfig = Tickets{}

func (t Tickets) GetDefaultRenewDays() int {
	days := getInt(t.values, defaultRenewDaysVar, 15)
	if days <= 0 {
		return 15
	}
	return days
}
