package interfaces

import (
	"github.com/customeros/outreachstack/dto"
)

// SendTimeService scores hourly candidate slots and returns the best
// send time within the requested bounds.
type SendTimeService interface {
	CalculateOptimalSendTime(recipient *dto.Prospect, constraints dto.SendTimeConstraints) (dto.OptimalSendTime, error)
}
