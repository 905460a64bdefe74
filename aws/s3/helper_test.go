package s3

import (
	"testing"
)

func TestParseDSN(t *testing.T) {
	// Test 1 - full URL.
	b, err := ParseDSN("s3://finance-bucket/incoming/mapping/", "eu-west-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "finance-bucket" || b.Prefix != "incoming/mapping" || b.Region != "eu-west-1" {
		t.Fatalf("unexpected bucket %+v", b)
	}
	if b.String() != "s3://finance-bucket/incoming/mapping" {
		t.Fatalf("unexpected string %q", b.String())
	}
	// Test 2 - no scheme.
	b, err = ParseDSN("finance-bucket", "eu-west-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "finance-bucket" || b.Prefix != "" {
		t.Fatalf("unexpected bucket %+v", b)
	}
	// Test 3 - wrong scheme.
	if _, err = ParseDSN("gs://bucket/prefix", "eu-west-1"); err == nil {
		t.Fatal("expected error for wrong scheme")
	}
	// Test 4 - missing region.
	if _, err = ParseDSN("s3://bucket/prefix", ""); err == nil {
		t.Fatal("expected error for missing region")
	}
}

func TestGetKeyWithPrefix(t *testing.T) {
	c := &basicClient{prefix: "incoming/"}
	if got := c.getKeyWithPrefix("a.csv"); got != "incoming/a.csv" {
		t.Fatalf("expected incoming/a.csv; got %v", got)
	}
	c.prefix = ""
	if got := c.getKeyWithPrefix("a.csv"); got != "a.csv" {
		t.Fatalf("expected a.csv; got %v", got)
	}
}
