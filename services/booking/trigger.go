package booking

import (
	"tutorhub/models"
	"tutorhub/services/notification"
)

// shouldNotify decides whether this merge completes a block of 6: the new
// entry must be the chronologically last one in the freshly sorted list, the
// total count must be an exact multiple of 6, and the block's email must not
// have gone out already.
func shouldNotify(group *models.BookingGroup, entry models.SessionEntry, added bool) bool {
	if !added || group.BookingCount == 0 {
		return false
	}
	if group.BookingCount%BlockSize != 0 {
		return false
	}
	if group.NotifiedCount >= group.BookingCount {
		return false
	}
	last := group.SessionStartTimes[len(group.SessionStartTimes)-1]
	return last.StartTime == entry.StartTime
}

// blockConfirmation assembles the email for the group's latest block. The
// welcome template is reserved for the very first completed block.
func blockConfirmation(group *models.BookingGroup, name, tz string) notification.BlockConfirmation {
	tmpl := notification.TemplateContinuing
	if group.BookingCount == BlockSize {
		tmpl = notification.TemplateWelcome
	}
	return notification.BlockConfirmation{
		To:         group.Email,
		Name:       name,
		TimeZone:   tz,
		Template:   tmpl,
		EventID:    group.EventID,
		StartTimes: group.SessionStartTimes.LastN(BlockSize).StartTimes(),
	}
}
