package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
  - id: topic
    type: SNS
    sns:
      topic_arn: arn:aws:sns:us-east-1:123456789012:status
      region: us-east-1
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "http2" || enabled[1].ID != "topic" {
		t.Fatalf("expected http2 and topic enabled, got %#v", enabled)
	}
	http2, _ := reg.ByID("http2")
	if http2.HTTP.Method != "POST" || http2.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("http defaults not applied: %#v", http2.HTTP)
	}
	if topic, _ := reg.ByID("topic"); topic.Type != TypeSNS {
		t.Fatalf("type not normalized: %q", topic.Type)
	}
	if len(reg.All()) != 3 {
		t.Fatalf("expected 3 publishers, got %d", len(reg.All()))
	}
}

func TestParseRegistryWithoutExtension(t *testing.T) {
	reg, err := ParseRegistry([]byte(`{"publishers":[{"id":"ps","type":"pubsub","pubsub":{"project_id":"p","topic":"t"}}]}`), "")
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}
	cfg, ok := reg.ByID(" ps ")
	if !ok || cfg.PubSub.Topic != "t" || !cfg.EnabledValue() {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http":    {ID: "h1", Type: TypeHTTP},
		"missing sqs url": {ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{Region: "us-east-1"}},
		"missing sns arn": {ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		"missing topic":   {ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "proj"}},
		"half aws keys": {ID: "s2", Type: TypeSNS, SNS: &SNSPublisherConfig{
			TopicARN: "arn", Region: "us-east-1", Credentials: AWSCredentials{AccessKeyID: "AKIA"},
		}},
		"missing id": {Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x"}},
		"bad type":   {ID: "k1", Type: "kafka"},
	}
	for name, cfg := range cases {
		if err := cfg.validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers":[{"id":"a","type":"http","http":{"url":"https://x"}},{"id":"a","type":"http","http":{"url":"https://y"}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
