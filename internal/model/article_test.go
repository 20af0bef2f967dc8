package model

import "testing"

func TestFormatPublished(t *testing.T) {
	tests := []struct {
		name      string
		published string
		expected  string
	}{
		{"rfc3339", "2024-01-25T21:30:00Z", "January 25, 2024 at 09:30 PM"},
		{"rfc1123z", "Thu, 25 Jan 2024 08:05:00 +0000", "January 25, 2024 at 08:05 AM"},
		{"garbage", "yesterday", "yesterday"},
		{"empty", "", "Unknown date"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := RawArticle{PublishedAt: test.published}.FormatPublished()
			if got != test.expected {
				t.Errorf("Expected '%s', got '%s'", test.expected, got)
			}
		})
	}
}

func TestParseSentiment(t *testing.T) {
	for _, value := range []string{"positive", " Neutral ", "NEGATIVE"} {
		if _, err := ParseSentiment(value); err != nil {
			t.Errorf("Expected %q to parse, got %v", value, err)
		}
	}
	if _, err := ParseSentiment("mixed"); err == nil {
		t.Error("Expected error for unknown sentiment")
	}
}
