package format

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty stays empty",
			in:   "",
			want: "",
		},
		{
			name: "keywords uppercased",
			in:   "select a from T where x = 1",
			want: "SELECT a FROM T WHERE x = 1",
		},
		{
			name: "comma spacing normalized",
			in:   "SELECT a ,b,  c FROM T",
			want: "SELECT a, b, c FROM T",
		},
		{
			name: "comma at line end untouched",
			in:   "SELECT a,\n  b\nFROM T",
			want: "SELECT a,\n  b\nFROM T",
		},
		{
			name: "strings preserved",
			in:   "select 'from a,b' from T",
			want: "SELECT 'from a,b' FROM T",
		},
		{
			name: "escaped quote keeps string open",
			in:   "select 'it''s, fine' from T",
			want: "SELECT 'it''s, fine' FROM T",
		},
		{
			name: "double-quoted string preserved",
			in:   `select "a ,b" from T`,
			want: `SELECT "a ,b" FROM T`,
		},
		{
			name: "double-quoted string preserved across lines",
			in:   "select \"a ,\nb ,c\" ,d from T",
			want: "SELECT \"a ,\nb ,c\", d FROM T",
		},
		{
			name: "brackets preserved",
			in:   "select [select,col] from T",
			want: "SELECT [select,col] FROM T",
		},
		{
			name: "line comment preserved",
			in:   "select a -- from x ,y\nfrom T",
			want: "SELECT a -- from x ,y\nFROM T",
		},
		{
			name: "block comment preserved across lines",
			in:   "select a /* from\nx ,y */ from T",
			want: "SELECT a /* from\nx ,y */ FROM T",
		},
		{
			name: "unterminated string returned scannable",
			in:   "select 'oops from T",
			want: "SELECT 'oops from T",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.in)
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFixedPoint(t *testing.T) {
	corpus := []string{
		"",
		"select a ,b from T",
		"SELECT * FROM [My Table] t JOIN Other o ON t.id = o.id",
		"select 'it''s, a test; SELECT' from A",
		`select "a ,b" ,c from T`,
		"select a, -- trailing ,comment\n b from T",
		"select /* unterminated",
		"select count(*) ,status from A group by status",
	}
	for _, sql := range corpus {
		once := Format(sql)
		twice := Format(once)
		if once != twice {
			t.Errorf("not a fixed point for %q:\n once: %q\ntwice: %q", sql, once, twice)
		}
	}
}
