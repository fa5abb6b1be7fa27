package profiles

import "time"

// Profile is a jobseeker's application profile. Resume is a document path
// returned by the uploads endpoint.
type Profile struct {
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Resume     string    `json:"resume,omitempty"`
	Skills     []string  `json:"skills"`
	Experience string    `json:"experience,omitempty"`
	Education  string    `json:"education,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasResume reports whether the profile carries a resume document.
func (p Profile) HasResume() bool { return p.Resume != "" }
