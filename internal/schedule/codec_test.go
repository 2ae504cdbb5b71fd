package schedule

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TimeExpr
	}{
		{
			name:     "anchor with positive offset",
			input:    "sunrise+00:30",
			expected: TimeExpr{Reference: "sunrise", Sign: "+", Offset: "00:30"},
		},
		{
			name:     "anchor with negative offset",
			input:    "sunset-01:15",
			expected: TimeExpr{Reference: "sunset", Sign: "-", Offset: "01:15"},
		},
		{
			name:     "plain clock time",
			input:    "18:45",
			expected: TimeExpr{Reference: "time", Sign: "+", Offset: "18:45"},
		},
		{
			name:     "dawn anchor",
			input:    "dawn+00:00",
			expected: TimeExpr{Reference: "dawn", Sign: "+", Offset: "00:00"},
		},
		{
			name:     "dusk anchor negative",
			input:    "dusk-00:45",
			expected: TimeExpr{Reference: "dusk", Sign: "-", Offset: "00:45"},
		},
		{
			name:     "noon anchor",
			input:    "noon+02:00",
			expected: TimeExpr{Reference: "noon", Sign: "+", Offset: "02:00"},
		},
		{
			name:     "midnight clock time",
			input:    "00:00",
			expected: TimeExpr{Reference: "time", Sign: "+", Offset: "00:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.expected {
				t.Errorf("Parse(%q) = %+v, expected %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	canonical := []string{
		"sunrise+00:30",
		"sunrise-00:30",
		"sunset+01:00",
		"sunset-23:59",
		"dawn+00:00",
		"dusk-12:30",
		"noon+06:15",
		"18:45",
		"00:00",
		"23:59",
	}

	for _, s := range canonical {
		if got := Parse(s).Format(); got != s {
			t.Errorf("Format(Parse(%q)) = %q, expected round trip", s, got)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		expr     TimeExpr
		expected string
	}{
		{
			name:     "plain time ignores sign",
			expr:     TimeExpr{Reference: "time", Sign: "+", Offset: "07:30"},
			expected: "07:30",
		},
		{
			name:     "anchor concatenates without separator",
			expr:     TimeExpr{Reference: "sunset", Sign: "-", Offset: "00:30"},
			expected: "sunset-00:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.Format(); got != tt.expected {
				t.Errorf("Format() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		expr    TimeExpr
		wantErr bool
	}{
		{"valid anchor", TimeExpr{Reference: "sunrise", Sign: "+", Offset: "00:30"}, false},
		{"valid plain time", TimeExpr{Reference: "time", Sign: "+", Offset: "18:45"}, false},
		{"unknown reference", TimeExpr{Reference: "moonrise", Sign: "+", Offset: "00:30"}, true},
		{"bad sign", TimeExpr{Reference: "sunset", Sign: "~", Offset: "00:30"}, true},
		{"offset hour out of range", TimeExpr{Reference: "time", Sign: "+", Offset: "24:00"}, true},
		{"offset minute out of range", TimeExpr{Reference: "time", Sign: "+", Offset: "12:60"}, true},
		{"offset not a time", TimeExpr{Reference: "time", Sign: "+", Offset: "later"}, true},
		{"negative offset rejected", TimeExpr{Reference: "time", Sign: "+", Offset: "-1:00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
