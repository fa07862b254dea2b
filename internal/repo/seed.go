// Package repo – demo seed.
//
// SeedDemo loads a small catalog so a fresh deployment has something to
// browse and buy. It is a no-op when the courses table already has rows, so
// redeployments never duplicate data.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/matrix-academy/go-course-backend/internal/domain"
)

type seedLesson struct {
	Title   string
	Content string
}

type seedCourse struct {
	Title      string
	Desc       string
	Price      float64
	ImageURL   string
	Instructor string // lowercase; title-cased on insert
	Lessons    []seedLesson
}

var demoCatalog = []seedCourse{
	{
		Title:      "Complete React Development Bootcamp",
		Desc:       "Master React from fundamentals to advanced concepts including hooks, context, and state management.",
		Price:      89.99,
		ImageURL:   "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=800&h=400&fit=crop",
		Instructor: "sarah mitchell",
		Lessons: []seedLesson{
			{"Introduction to React Fundamentals", "Understanding components, JSX, and the virtual DOM"},
			{"State Management with Hooks", "useState, useEffect, and custom hooks implementation"},
			{"Advanced React Patterns", "Higher-order components, render props, and compound components"},
			{"Building Real-World Applications", "Project setup, routing, and deployment strategies"},
		},
	},
	{
		Title:      "Python for Data Science & Machine Learning",
		Desc:       "Comprehensive Python programming course focused on data analysis, visualization, and machine learning.",
		Price:      119.99,
		ImageURL:   "https://images.unsplash.com/photo-1526379095098-d400fd0bf935?w=800&h=400&fit=crop",
		Instructor: "michael chen",
		Lessons: []seedLesson{
			{"Python Basics and Data Types", "Variables, lists, dictionaries, and control structures"},
			{"Data Analysis with Pandas", "DataFrames, Series, and data manipulation techniques"},
			{"Data Visualization with Matplotlib", "Creating charts, graphs, and statistical plots"},
			{"Machine Learning with Scikit-learn", "Supervised and unsupervised learning algorithms"},
			{"Real-World Data Science Projects", "End-to-end data analysis and model deployment"},
		},
	},
	{
		Title:      "Modern JavaScript: From Fundamentals to Advanced",
		Desc:       "Deep dive into JavaScript ES6+, asynchronous programming, closures, prototypes, and modern practices.",
		Price:      79.99,
		ImageURL:   "https://images.unsplash.com/photo-1627398242454-45a1465c2479?w=800&h=400&fit=crop",
		Instructor: "alex johnson",
		Lessons: []seedLesson{
			{"ES6+ Features and Modern JavaScript", "Arrow functions, destructuring, and template literals"},
			{"Asynchronous JavaScript", "Promises, async/await, and callback patterns"},
			{"Advanced JavaScript Concepts", "Closures, prototypes, and object-oriented programming"},
		},
	},
	{
		Title:      "Node.js Backend Development with Express",
		Desc:       "Build scalable backend applications with Node.js, Express, and RESTful API design patterns.",
		Price:      99.99,
		ImageURL:   "https://images.unsplash.com/photo-1542831371-29b0f74f9713?w=800&h=400&fit=crop",
		Instructor: "emily chen",
		Lessons: []seedLesson{
			{"Node.js Fundamentals", "Event loop, modules, and npm package management"},
			{"Building REST APIs with Express", "Routing, middleware, and request handling"},
			{"Database Integration", "Connections, queries, and data modeling"},
			{"Authentication and Security", "Tokens, password hashing, and input validation"},
		},
	},
}

// SeedDemo inserts the demo catalog when the courses table is empty. Returns
// the number of courses inserted (0 when the table already had data).
func SeedDemo(ctx context.Context, db *gorm.DB) (int, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&domain.Course{}).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		log.Info().Int64("courses", existing).Msg("catalog already populated, skipping seed")
		return 0, nil
	}

	titleCaser := cases.Title(language.English)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, sc := range demoCatalog {
			course := &domain.Course{
				ID:             uuid.NewString(),
				Title:          sc.Title,
				Description:    sc.Desc,
				Price:          sc.Price,
				ImageURL:       sc.ImageURL,
				InstructorName: titleCaser.String(sc.Instructor),
			}
			if err := tx.Create(course).Error; err != nil {
				return err
			}
			for j, sl := range sc.Lessons {
				lesson := &domain.Lesson{
					ID:       uuid.NewString(),
					CourseID: course.ID,
					Title:    sl.Title,
					Content:  sl.Content,
					VideoURL: fmt.Sprintf("https://sample-videos.com/zip/10/mp4/SampleVideo_%d_10MB.mp4", (i%5)+1),
					Order:    j + 1,
				}
				if err := tx.Create(lesson).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().
		Int("courses", len(demoCatalog)).
		Time("at", time.Now().UTC()).
		Msg("demo catalog seeded")
	return len(demoCatalog), nil
}
