package sanitize

import "testing"

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"allowed formatting kept",
			"<p><b>bold</b> and <em>italic</em></p>",
			"<p><b>bold</b> and <em>italic</em></p>",
		},
		{
			"disallowed element unwrapped",
			"<p><span>text</span></p>",
			"<p>text</p>",
		},
		{
			"script subtree dropped",
			"<p>before</p><script>alert(1)</script><p>after</p>",
			"<p>before</p><p>after</p>",
		},
		{
			"event handler stripped from anchor",
			`<a href="https://example.org" onclick="steal()">link</a>`,
			`<a href="https://example.org">link</a>`,
		},
		{
			"mention attributes survive",
			`<a href="https://chat.example/#/@alice:example.org" data-mention-type="user" contenteditable="false">Alice</a>`,
			`<a href="https://chat.example/#/@alice:example.org" data-mention-type="user" contenteditable="false">Alice</a>`,
		},
		{
			"ol keeps start, loses class",
			`<ol start="3" class="fancy"><li>item</li></ol>`,
			`<ol start="3"><li>item</li></ol>`,
		},
		{
			"nested disallowed wrapper",
			`<div><blockquote><p>quoted</p></blockquote></div>`,
			`<blockquote><p>quoted</p></blockquote>`,
		},
		{
			"br is void",
			"<p>one<br>two</p>",
			"<p>one<br>two</p>",
		},
		{
			"text is escaped",
			"<p>a &lt; b</p>",
			"<p>a &lt; b</p>",
		},
		{
			"plain text passes through",
			"just words",
			"just words",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTML(tt.in); got != tt.want {
				t.Errorf("HTML(%q)\n got  %q\n want %q", tt.in, got, tt.want)
			}
		})
	}
}
