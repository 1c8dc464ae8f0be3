package enum

type EntityType string

const (
	IDENTITY    EntityType = "SENDING_IDENTITY"
	TOUCH       EntityType = "CHANNEL_TOUCH"
	SUPPRESSION EntityType = "SUPPRESSION"
	OUTREACH    EntityType = "OUTREACH"
)

func (t EntityType) String() string {
	return string(t)
}
