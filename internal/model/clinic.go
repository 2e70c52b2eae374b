package model

type Clinic struct {
	Base
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
	Timezone string `db:"timezone" json:"timezone"`
	Status   string `db:"status" json:"status"`
}

// ClinicSettings is the small per-tenant settings blob cached by the tenant
// middleware.
type ClinicSettings struct {
	ClinicID         string `db:"clinic_id" json:"clinic_id"`
	OnTimeGraceMin   int    `db:"on_time_grace_min" json:"on_time_grace_min"`
	ContentDelivery  bool   `db:"content_delivery" json:"content_delivery"`
	ReminderTemplate string `db:"reminder_template" json:"reminder_template"`
}
