package formclient

import "strings"

// OrientationProgram labels submissions that originate from the orientation
// booking form rather than the general contact form.
const OrientationProgram = "Orientation Booking"

// OrientationRequest captures the orientation booking form. The extra fields
// have no server-side representation; they fold into the message body in a
// fixed block the admissions team reads.
type OrientationRequest struct {
	Name         string
	Email        string
	Phone        string
	Availability string
	Location     string
	Goal         string
	Experience   string
	Questions    string
	Honey        string
}

// Values converts the request into contact form values ready for Submit.
func (r OrientationRequest) Values() Values {
	message := strings.Join([]string{
		"ORIENTATION BOOKING REQUEST",
		"",
		"Preferred Availability: " + orNA(r.Availability),
		"Preferred Location: " + orNA(r.Location),
		"Goal: " + r.Goal,
		"Experience: " + r.Experience,
		"",
		"Questions / Notes:",
		orNA(r.Questions),
	}, "\n")

	return Values{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Program: OrientationProgram,
		Message: message,
		Honey:   r.Honey,
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
