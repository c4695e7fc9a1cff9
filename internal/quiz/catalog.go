package quiz

import "strings"

var topicsBySubject = map[string][]string{
	"Mathematics":       {"Algebra", "Geometry", "Calculus", "Statistics", "Trigonometry", "Number Theory"},
	"Science":           {"Physics", "Chemistry", "Biology", "Astronomy", "Earth Science", "Environmental Science"},
	"Social Studies":    {"History", "Geography", "Civics", "Economics", "Political Science", "Sociology"},
	"General Knowledge": {"Current Affairs", "Geography", "Arts & Literature", "Sports", "Technology", "Entertainment"},
	"Machine Learning":  {"Supervised Learning", "Unsupervised Learning", "Deep Learning", "Neural Networks", "Natural Language Processing", "Computer Vision"},
}

// TopicsBySubject returns the known topics of a subject, or an empty slice
// for subjects outside the catalog.
func TopicsBySubject(subject string) ([]string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, validationError("subject is required")
	}

	topics, ok := topicsBySubject[subject]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, len(topics))
	copy(out, topics)
	return out, nil
}
