// Package domain defines the persistence models for courses, lessons,
// purchases, and lesson progress. These types are mapped with GORM and form
// the core data layer of the course-marketplace application.
package domain

import (
	"time"
)

// Course represents a purchasable course in the catalog. Course metadata
// (title, description, price) is public; lesson content behind a course is
// gated by a Purchase.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Title / Description: public catalog metadata.
//   - Price: non-negative amount in the platform currency.
//   - ImageURL / InstructorName: presentation metadata, never validated here.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Course struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Title          string    `json:"title"           gorm:"type:varchar(255);not null"`
	Description    string    `json:"description"     gorm:"type:text;not null"`
	Price          float64   `json:"price"           gorm:"not null;check:price >= 0"`
	ImageURL       string    `json:"image_url"       gorm:"type:varchar(512)"`
	InstructorName string    `json:"instructor_name" gorm:"type:varchar(255)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Course.
func (Course) TableName() string { return "courses" }

// Lesson represents a single unit of content inside a course. Lessons are
// ordered within their course by Order, which drives "next lesson"
// navigation. Lesson titles are public; Content and VideoURL are entitlement
// gated.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - CourseID: foreign key to the owning course (indexed).
//   - Order: position within the course; unique per course, strictly
//     increasing but not necessarily contiguous.
//   - Title: public metadata.
//   - Content / VideoURL: gated lesson body.
type Lesson struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	CourseID  string    `json:"course_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_lesson_course_order,priority:1"`
	Title     string    `json:"title"     gorm:"type:varchar(255);not null"`
	Content   string    `json:"content"   gorm:"type:text"`
	VideoURL  string    `json:"video_url" gorm:"type:varchar(512)"`
	Order     int       `json:"order"     gorm:"column:sort_order;not null;uniqueIndex:ux_lesson_course_order,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Course is the parent course. Lessons are cascade-deleted if their
	// course is removed.
	Course Course `json:"-" gorm:"foreignKey:CourseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Lesson.
func (Lesson) TableName() string { return "lessons" }

// Purchase is the entitlement record proving a user may access a course's
// content. At most one purchase may ever exist per (user_id, course_id), and
// a non-null payment reference is globally unique so the same provider event
// can never grant twice. Purchases are created once and never updated or
// deleted.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: opaque identifier supplied by the auth layer.
//   - CourseID: the purchased course.
//   - PaymentRef: the payment provider's session identifier; nil for direct
//     or manual grants.
//   - CreatedAt: grant time (UTC).
type Purchase struct {
	ID         string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID     string    `json:"user_id"   gorm:"type:varchar(64);not null;index;uniqueIndex:ux_purchase_user_course,priority:1"`
	CourseID   string    `json:"course_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_purchase_user_course,priority:2"`
	PaymentRef *string   `json:"payment_ref,omitempty" gorm:"type:varchar(255);uniqueIndex:ux_purchase_payment_ref"`
	CreatedAt  time.Time `json:"created_at"`

	// Course is the purchased course; preloaded for "my purchases" views.
	Course Course `json:"-" gorm:"foreignKey:CourseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Purchase.
func (Purchase) TableName() string { return "purchases" }

// LessonProgress tracks a user's completion state for a single lesson.
// Exactly one row may exist per (user_id, lesson_id); it is created on the
// first write and updated in place afterwards. CompletedAt is set iff
// Completed is true and always reflects the most recent completion write.
type LessonProgress struct {
	ID          string     `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID      string     `json:"user_id"   gorm:"type:varchar(64);not null;index;uniqueIndex:ux_progress_user_lesson,priority:1"`
	LessonID    string     `json:"lesson_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_progress_user_lesson,priority:2"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Lesson is the tracked lesson. Progress rows are cascade-deleted if the
	// lesson is removed.
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LessonProgress.
func (LessonProgress) TableName() string { return "lesson_progress" }
