package service

import (
	"strings"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// ClassificationRule maps any matching keyword to a category and priority.
type ClassificationRule struct {
	Keywords []string
	Category string
	Priority domain.TicketPriority
}

// DefaultRules is the built-in keyword table. Order matters: the first rule
// with a matching keyword wins.
func DefaultRules() []ClassificationRule {
	return []ClassificationRule{
		{Keywords: []string{"password", "reset", "unlock"}, Category: domain.CategoryAccess, Priority: domain.TicketPriorityLow},
		{Keywords: []string{"vpn", "connect", "cannot connect", "network"}, Category: domain.CategoryNetworking, Priority: domain.TicketPriorityMedium},
		{Keywords: []string{"server down", "down", "outage", "unreachable"}, Category: domain.CategoryInfrastructure, Priority: domain.TicketPriorityHigh},
		{Keywords: []string{"email", "outlook", "send", "receive"}, Category: domain.CategoryEmail, Priority: domain.TicketPriorityMedium},
		{Keywords: []string{"install", "software", "upgrade"}, Category: domain.CategorySoftware, Priority: domain.TicketPriorityLow},
	}
}

// Classifier assigns a category and priority to free text by keyword.
type Classifier struct {
	rules []ClassificationRule
}

// NewClassifier builds a classifier over rules; nil selects DefaultRules.
func NewClassifier(rules []ClassificationRule) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	normalized := make([]ClassificationRule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, k := range rule.Keywords {
			if k = strings.ToLower(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		normalized = append(normalized, ClassificationRule{Keywords: keywords, Category: rule.Category, Priority: rule.Priority})
	}
	return &Classifier{rules: normalized}
}

// Classify returns the first matching rule's category and priority, or
// (General, Medium) when nothing matches.
func (c *Classifier) Classify(text string) (string, domain.TicketPriority) {
	text = strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category, rule.Priority
			}
		}
	}
	return domain.CategoryGeneral, domain.TicketPriorityMedium
}

// ClassifyMessage classifies the subject and body of an inbound message.
func (c *Classifier) ClassifyMessage(subject, body string) (string, domain.TicketPriority) {
	return c.Classify(MessageText(subject, body))
}

// MessageText is the lower-cased text the classifier sees for a message.
func MessageText(subject, body string) string {
	return strings.ToLower(subject + "\n" + body)
}
