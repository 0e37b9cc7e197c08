package model_test

import (
	"errors"
	"testing"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Date
		wantErr bool
	}{
		{"2024-01-05", model.Date{Year: 2024, Month: 1, Day: 5}, false},
		{"0000-12-31", model.Date{Year: 0, Month: 12, Day: 31}, false},
		{"2024-1-5", model.Date{Year: 2024, Month: 1, Day: 5}, false},
		{"2024-13-01", model.Date{}, true},
		{"2024-00-01", model.Date{}, true},
		{"2024-01-32", model.Date{}, true},
		{"10000-01-01", model.Date{}, true},
		{"2024-01", model.Date{}, true},
		{"2024-01-05-x", model.Date{}, true},
		{"+2024-01-05", model.Date{}, true},
		{"today", model.Date{}, true},
		{"", model.Date{}, true},
	}
	for _, tt := range tests {
		got, err := model.ParseDate(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) = %v, want error", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestDateString(t *testing.T) {
	d := model.Date{Year: 2024, Month: 1, Day: 5}
	if got := d.String(); got != "2024-01-05" {
		t.Errorf("String() = %q, want %q", got, "2024-01-05")
	}
	back, err := model.ParseDate(d.String())
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %+v, want %+v", back, d)
	}
	if got := (model.Date{Year: 7, Month: 3, Day: 9}).String(); got != "0007-03-09" {
		t.Errorf("String() = %q, want %q", got, "0007-03-09")
	}
}

func TestNewRejectsCompletionWithoutCreation(t *testing.T) {
	done := model.Date{Year: 2024, Month: 2, Day: 1}
	_, err := model.New(true, 0, nil, &done, "ship it")
	if err == nil {
		t.Fatal("expected error for completion date without creation date")
	}
	var fe *model.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("error type = %T, want *model.FormatError", err)
	}
}

func TestNewRejectsBadPriority(t *testing.T) {
	if _, err := model.New(false, 'a', nil, nil, "x"); err == nil {
		t.Error("expected error for lowercase priority")
	}
}

func TestNewCopiesDates(t *testing.T) {
	created := model.Date{Year: 2024, Month: 1, Day: 1}
	r, err := model.New(false, 'B', &created, nil, "task")
	if err != nil {
		t.Fatal(err)
	}
	created.Day = 2
	if r.Created.Day != 1 {
		t.Errorf("record shares the caller's date: Created = %v", r.Created)
	}
}

func TestRecordEqual(t *testing.T) {
	d1 := model.Date{Year: 2024, Month: 1, Day: 1}
	d2 := model.Date{Year: 2024, Month: 1, Day: 1}
	a := model.Record{Created: &d1, Description: "a"}
	b := model.Record{Created: &d2, Description: "a"}
	if !a.Equal(b) {
		t.Error("records with equal date values should be equal")
	}
	b.Done = true
	if a.Equal(b) {
		t.Error("records differing in Done should not be equal")
	}
	c := model.Record{Description: "a"}
	if a.Equal(c) {
		t.Error("record with date should not equal record without")
	}
}

func TestRecordClone(t *testing.T) {
	d := model.Date{Year: 2024, Month: 1, Day: 1}
	a := model.Record{Created: &d, Description: "a"}
	b := a.Clone()
	b.Created.Day = 9
	if a.Created.Day != 1 {
		t.Error("Clone shares date memory with the original")
	}
}

func TestAppend(t *testing.T) {
	tests := []struct {
		desc string
		tag  model.Tag
		want string
	}{
		{"", model.ProjectTag("p"), "+p"},
		{"Test", model.ProjectTag("p"), "Test +p"},
		{"Test ", model.ContextTag("c"), "Test @c"},
		{"Test\t", model.DataTag("id", "4"), "Test\tid:4"},
		{"Test +p", model.DataTag("id", "4"), "Test +p id:4"},
	}
	for _, tt := range tests {
		r := model.Record{Description: tt.desc}
		r.Append(tt.tag)
		if r.Description != tt.want {
			t.Errorf("Append(%q, %v) = %q, want %q", tt.desc, tt.tag, r.Description, tt.want)
		}
	}
}

func TestTagString(t *testing.T) {
	tests := []struct {
		tag  model.Tag
		want string
	}{
		{model.ProjectTag("group/app"), "+group/app"},
		{model.ContextTag("gitlab"), "@gitlab"},
		{model.DataTag("id", "42"), "id:42"},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
