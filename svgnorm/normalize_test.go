package svgnorm

import (
	"errors"
	"strings"
	"testing"
)

func TestInvalidMarkup(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"not markup at all",
		"<svg",
		`<svg viewBox="0 0 24 24"><rect></svg>`,
		`<svg viewBox="0 0 24 24"><g></g>`,
		`<div><span/></div>`,
		`<?xml version="1.0"?><html></html>`,
		`<svg width=12></svg>`,
	} {
		_, err := Normalize(input)
		if !errors.Is(err, ErrInvalidMarkup) {
			t.Errorf("input %q: expected invalid markup, got %v", input, err)
		}
		if HasRoot([]byte(input)) {
			t.Errorf("input %q: unexpected svg root", input)
		}
	}
}

func TestForcedSize(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected string
	}{
		{
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24"><path d="M0 0h24v24H0z"/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="128" height="128"><path d="M0 0h24v24H0z"/></svg>`,
		},
		{
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M0 0h24v24H0z"/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="128" height="128"><path d="M0 0h24v24H0z"/></svg>`,
		},
		{
			`<svg height="1em" viewBox="0 0 16 16"></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" height="128" viewBox="0 0 16 16" width="128"/>`,
		},
	} {
		icon, err := Normalize(test.input)
		if err != nil {
			t.Fatal(err)
		}
		if icon.Markup() != test.expected {
			t.Errorf("expected\n%s\ngot\n%s", test.expected, icon.Markup())
		}
	}
}

func TestCurrentColor(t *testing.T) {
	input := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor">` +
		`<path stroke="CURRENTCOLOR" d="M1 1h2"/><circle style="fill:currentcolor" r="2"/></svg>`
	icon, err := Normalize(input)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.ToLower(icon.Markup()), "currentcolor") {
		t.Errorf("current color not resolved: %s", icon.Markup())
	}
	if c := strings.Count(icon.Markup(), "#000000"); c != 3 {
		t.Errorf("expected 3 resolved colors, got %d", c)
	}
}

func TestIdempotent(t *testing.T) {
	for _, input := range []string{
		`<svg viewBox="0 0 24 24"><g fill="currentColor"><path d="M2 2L22 22"/></g></svg>`,
		`<?xml version="1.0" encoding="UTF-8"?><!-- header --><svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="10" height="20"><defs><path id="p" d="M0 0"/></defs><use xlink:href="#p"/><text>a &amp; b &lt; c</text></svg>`,
		`<svg width="24"><title>"quoted" title</title><rect width="10" height="10" data-x="a&quot;b"/></svg>`,
	} {
		once, err := Normalize(input)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Normalize(once.Markup())
		if err != nil {
			t.Fatal(err)
		}
		if once != twice {
			t.Errorf("not idempotent:\n%s\n%s", once.Markup(), twice.Markup())
		}
	}
}

func TestNestedRoot(t *testing.T) {
	input := `<html><body><div><svg viewBox="0 0 10 10"><svg x="2" width="4" height="4"><rect width="1" height="1"/></svg></svg></div><svg id="second"/></body></html>`
	icon, err := Normalize(input)
	if err != nil {
		t.Fatal(err)
	}
	expected := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="128" height="128">` +
		`<svg x="2" width="4" height="4"><rect width="1" height="1"/></svg></svg>`
	if icon.Markup() != expected {
		t.Errorf("expected\n%s\ngot\n%s", expected, icon.Markup())
	}
	if !HasRoot([]byte(input)) {
		t.Error("expected svg root")
	}
}

func TestEscaping(t *testing.T) {
	input := `<svg viewBox="0 0 1 1"><text>1 &lt; 2 &amp;&amp; 3 &gt; 2</text><desc>plain "quotes"</desc></svg>`
	icon, err := Normalize(input)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(icon.Markup(), `<text>1 &lt; 2 &amp;&amp; 3 &gt; 2</text>`) {
		t.Errorf("text not escaped: %s", icon.Markup())
	}
	if !strings.Contains(icon.Markup(), `<desc>plain "quotes"</desc>`) {
		t.Errorf("unexpected quote escaping: %s", icon.Markup())
	}
}

func TestZeroIcon(t *testing.T) {
	var icon Icon
	if !icon.IsZero() {
		t.Error("expected zero icon")
	}
	icon, err := Normalize(`<svg/>`)
	if err != nil {
		t.Fatal(err)
	}
	if icon.IsZero() {
		t.Error("unexpected zero icon")
	}
	if icon.String() != icon.Markup() {
		t.Error("String and Markup differ")
	}
}
