package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/models"
)

const (
	knowledgeCacheKey = "cache:chat:knowledge"
	knowledgeCacheTTL = 5 * time.Minute
	knowledgeMaxItems = 10
)

// Process-local fallback copy for when Redis is unavailable. Concurrent
// recomputation on expiry is harmless; last writer wins.
var (
	knowledgeMu      sync.Mutex
	knowledgeLocal   string
	knowledgeLocalAt time.Time
)

// BuildKnowledgeBase assembles the chatbot's context from site content:
// recent sermons and events, ministries, about sections, leadership and
// settings. Sections that fail to load are dropped silently. The result is
// cached for five minutes.
func BuildKnowledgeBase(db *gorm.DB) string {
	if b, ok := CacheGetBytes(knowledgeCacheKey); ok {
		return string(b)
	}

	knowledgeMu.Lock()
	if knowledgeLocal != "" && time.Since(knowledgeLocalAt) < knowledgeCacheTTL {
		kb := knowledgeLocal
		knowledgeMu.Unlock()
		return kb
	}
	knowledgeMu.Unlock()

	var sb strings.Builder
	sb.WriteString("# Grace Chapel — Site Content\n\n")

	var sermons []models.Sermon
	if err := db.Order("created_at DESC").Limit(knowledgeMaxItems).Find(&sermons).Error; err == nil && len(sermons) > 0 {
		sb.WriteString("## Recent Sermons\n")
		for _, s := range sermons {
			sb.WriteString(fmt.Sprintf("- %q by %s (%s)", s.Title, s.Speaker, s.Date))
			if s.Scripture != "" {
				sb.WriteString(" — " + s.Scripture)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	var events []models.Event
	if err := db.Order("date DESC").Limit(knowledgeMaxItems).Find(&events).Error; err == nil && len(events) > 0 {
		sb.WriteString("## Upcoming & Recent Events\n")
		for _, e := range events {
			sb.WriteString(fmt.Sprintf("- %s on %s", e.Title, e.Date))
			if e.Time != "" {
				sb.WriteString(" at " + e.Time)
			}
			if e.Venue != "" {
				sb.WriteString(", " + e.Venue)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	var orgs []models.Organization
	if err := db.Order("name").Find(&orgs).Error; err == nil && len(orgs) > 0 {
		sb.WriteString("## Ministries & Organizations\n")
		for _, o := range orgs {
			sb.WriteString("- " + o.Name)
			if o.Leader != "" {
				sb.WriteString(", led by " + o.Leader)
			}
			if o.MeetingTime != "" {
				sb.WriteString(" (meets " + o.MeetingTime + ")")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	var sections []models.AboutSection
	if err := db.Find(&sections).Error; err == nil && len(sections) > 0 {
		sb.WriteString("## About\n")
		for _, s := range sections {
			title := s.Title
			if title == "" {
				title = s.Section
			}
			sb.WriteString("### " + title + "\n")
			sb.WriteString(s.Content + "\n\n")
		}
	}

	var leaders []models.LeadershipMember
	if err := db.Order("sort_order").Find(&leaders).Error; err == nil && len(leaders) > 0 {
		sb.WriteString("## Leadership\n")
		for _, l := range leaders {
			sb.WriteString("- " + l.Name)
			if l.Title != "" {
				sb.WriteString(", " + l.Title)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	var settings []models.SiteSetting
	if err := db.Find(&settings).Error; err == nil && len(settings) > 0 {
		sb.WriteString("## Church Information\n")
		for _, st := range settings {
			sb.WriteString("- " + st.Key + ": " + flattenSettingValue(st.Value) + "\n")
		}
		sb.WriteString("\n")
	}

	kb := sb.String()
	CacheSetBytes(knowledgeCacheKey, []byte(kb), knowledgeCacheTTL)
	knowledgeMu.Lock()
	knowledgeLocal = kb
	knowledgeLocalAt = time.Now()
	knowledgeMu.Unlock()
	return kb
}

// InvalidateKnowledgeBase drops the cached knowledge base after a content
// mutation so the chatbot picks up fresh data within one request.
func InvalidateKnowledgeBase() {
	InvalidateByPrefix(knowledgeCacheKey)
	knowledgeMu.Lock()
	knowledgeLocal = ""
	knowledgeMu.Unlock()
}

// flattenSettingValue renders a JSON setting value as a single readable line.
func flattenSettingValue(v string) string {
	var m map[string]any
	if err := json.Unmarshal([]byte(v), &m); err != nil {
		return v
	}
	parts := make([]string, 0, len(m))
	for k, val := range m {
		parts = append(parts, fmt.Sprintf("%s=%v", k, val))
	}
	return strings.Join(parts, ", ")
}

// fallbackTopics maps keywords to canned answers used when the LLM call fails
// or returns nothing.
var fallbackTopics = []struct {
	Keywords []string
	Answer   string
}{
	{
		Keywords: []string{"service", "time", "when", "sunday", "worship"},
		Answer:   "Our main worship service is on Sunday mornings, with midweek bible study on Wednesdays. Check the Events page for exact times and any special services.",
	},
	{
		Keywords: []string{"where", "location", "address", "direction", "find you"},
		Answer:   "You can find our address and directions on the Contact page. We would love to see you in person!",
	},
	{
		Keywords: []string{"give", "giving", "tithe", "offering", "donate", "donation"},
		Answer:   "You can give securely online through our Giving page — tithes, offerings, building fund and missions are all supported, and you will receive an email receipt.",
	},
	{
		Keywords: []string{"event", "program", "conference", "upcoming", "calendar"},
		Answer:   "Our Events page lists everything coming up, from youth programs to conferences. New events are added regularly.",
	},
	{
		Keywords: []string{"sermon", "message", "preach", "listen", "watch"},
		Answer:   "Recent sermons, with audio and video, are available on the Sermons page. You can browse by series or speaker.",
	},
	{
		Keywords: []string{"pastor", "leader", "leadership", "minister", "staff"},
		Answer:   "You can meet our pastors and leadership team on the About page.",
	},
	{
		Keywords: []string{"visit", "new", "first time", "expect", "welcome"},
		Answer:   "We would love to have you visit! Come as you are — services are family friendly and you can learn what to expect on our About page.",
	},
}

const fallbackDefault = "Thanks for reaching out! I can help with questions about service times, our location, giving, events, sermons and our leadership team. What would you like to know?"

// FallbackAnswer picks a canned reply by keyword match when the LLM is
// unavailable.
func FallbackAnswer(message string) string {
	msg := strings.ToLower(message)
	for _, topic := range fallbackTopics {
		for _, kw := range topic.Keywords {
			if strings.Contains(msg, kw) {
				return topic.Answer
			}
		}
	}
	return fallbackDefault
}
