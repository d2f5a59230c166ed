package types

import "time"

// User is the profile returned by the platform on login or signup.
// It is an immutable snapshot; the client never mutates it.
type User struct {
	ID        string  `json:"id"`
	Username  *string `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role"`
}

// DisplayName returns the user's full name, falling back to the
// username or email when the profile is sparse.
func (u User) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		if u.FirstName == "" {
			return u.LastName
		}
		if u.LastName == "" {
			return u.FirstName
		}
		return u.FirstName + " " + u.LastName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}

// Session is the durable authenticated-identity record held on-device:
// the user, the opaque session cookie issued by the platform, the last
// URL the browser surface visited, and the selected organization id
// (empty = platform default organization).
type Session struct {
	User           User
	Cookie         string
	LastURL        string
	OrganizationID string
}

// OrganizationMembership describes the authenticated user's membership
// in an organization.
type OrganizationMembership struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	JoinedAt       string `json:"joinedAt"`
}

// Organization is a tenant the user belongs to. The list is fetched
// fresh every time the picker opens and never persisted; only the
// chosen id is stored.
type Organization struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortName        *string                `json:"shortName"`
	Description      string                 `json:"description"`
	LogoURL          *string                `json:"logoUrl"`
	IsPublic         bool                   `json:"isPublic"`
	PublicSlug       string                 `json:"publicSlug"`
	OrganizationType string                 `json:"organizationType"`
	Membership       OrganizationMembership `json:"membership"`
}

// Label returns the short name when present, the full name otherwise.
func (o Organization) Label() string {
	if o.ShortName != nil && *o.ShortName != "" {
		return *o.ShortName
	}
	return o.Name
}

// NavigationState mirrors the browser surface's view of the world after
// the most recent navigation event.
type NavigationState struct {
	URL       string
	CanGoBack bool
}

// Visit is one entry in the local navigation history.
type Visit struct {
	URL       string
	VisitedAt time.Time
}

// CourseCategory groups courses inside an organization.
type CourseCategory struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Color          string  `json:"color"`
}

// Instructor is the course author profile embedded in course payloads.
type Instructor struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// Course is a single course as returned by the courses listing.
type Course struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	CategoryID        string     `json:"categoryId"`
	CategoryName      string     `json:"categoryName,omitempty"`
	ThumbnailURL      string     `json:"thumbnailUrl"`
	EstimatedDuration int        `json:"estimatedDuration"`
	Difficulty        string     `json:"difficulty"`
	IsPublished       bool       `json:"isPublished"`
	IsPremiumOnly     bool       `json:"isPremiumOnly"`
	Instructor        Instructor `json:"instructor"`
	LessonsCount      int        `json:"lessonsCount"`
	SectionsCount     int        `json:"sectionsCount"`
	IsEnrolled        bool       `json:"isEnrolled,omitempty"`
	Progress          float64    `json:"progress,omitempty"`
}

// CourseSection is one section of a course outline.
type CourseSection struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"orderIndex"`
}

// CourseDetail extends Course with the outline and enrollment stats.
type CourseDetail struct {
	Course
	EnrollmentCount int             `json:"enrollmentCount"`
	Sections        []CourseSection `json:"sections"`
	EnrollmentID    string          `json:"enrollmentId,omitempty"`
}

// Enrollment is the record created when the user enrolls in a course.
type Enrollment struct {
	ID             string  `json:"id"`
	UserID         string  `json:"userId"`
	CourseID       string  `json:"courseId"`
	EnrolledAt     string  `json:"enrolledAt"`
	CompletedAt    *string `json:"completedAt"`
	Progress       float64 `json:"progress"`
	LastAccessedAt *string `json:"lastAccessedAt"`
}
