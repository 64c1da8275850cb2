package mqtt

import (
	"errors"
	"testing"
)

func TestEventTopic(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		thingName string
		want      string
		wantErr   bool
	}{
		{
			name:      "simple",
			prefix:    "ditto/events",
			thingName: "Mixer",
			want:      "ditto/events/Mixer",
		},
		{
			name:      "trailing slash on prefix",
			prefix:    "ditto/events/",
			thingName: "Mixer",
			want:      "ditto/events/Mixer",
		},
		{
			name:      "separators and wildcards sanitized",
			prefix:    "ditto/events",
			thingName: "plant/line+1#a",
			want:      "ditto/events/plant-line-1-a",
		},
		{
			name:    "empty prefix",
			prefix:  "",
			wantErr: true,
		},
		{
			name:      "empty thing name",
			prefix:    "ditto/events",
			thingName: "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EventTopic(tt.prefix, tt.thingName)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTopic) {
					t.Errorf("EventTopic() error = %v, want ErrInvalidTopic", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EventTopic() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EventTopic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublishEvent_RejectsOversizedPayload(t *testing.T) {
	b := &Bridge{}
	b.cfg.TopicPrefix = "ditto/events"

	err := b.PublishEvent("Mixer", make([]byte, maxPayloadSize+1))
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishEvent() error = %v, want ErrPublishFailed", err)
	}
}

func TestPublishEvent_RejectsEmptyThingName(t *testing.T) {
	b := &Bridge{}
	b.cfg.TopicPrefix = "ditto/events"

	if err := b.PublishEvent("", []byte("{}")); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("PublishEvent() error = %v, want ErrInvalidTopic", err)
	}
}
