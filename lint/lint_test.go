package lint

import (
	"strings"
	"testing"
)

func checkRule(t *testing.T, r Rule, sql string) []Diagnostic {
	t.Helper()
	return r.Check(NewContext(sql))
}

func TestMissingSelect(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"select statement", "SELECT * FROM A", 0},
		{"leading comment", "-- note\nSELECT * FROM A", 0},
		{"empty input", "   ", 0},
		{"bare expression", "foo bar", 1},
		{"prohibited keyword left to its own rule", "DELETE FROM A", 0},
	}
	r := &missingSelect{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
			if tt.want == 1 && got[0].Severity != Prereq {
				t.Errorf("severity = %v, want prereq", got[0].Severity)
			}
		})
	}
}

func TestProhibitedKeywords(t *testing.T) {
	r := &prohibitedKeywords{}

	got := checkRule(t, r, "DELETE FROM Subscribers WHERE id = 1")
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(got), got)
	}
	if got[0].Severity != Error {
		t.Errorf("severity = %v, want error", got[0].Severity)
	}
	if got[0].Start != 0 || got[0].End != 6 {
		t.Errorf("span = [%d,%d), want [0,6)", got[0].Start, got[0].End)
	}

	got = checkRule(t, r, "WITH cte AS (SELECT 1) SELECT * FROM cte")
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(got), got)
	}
	if !strings.Contains(got[0].Message, "common table expressions") {
		t.Errorf("message %q does not mention common table expressions", got[0].Message)
	}

	if got := checkRule(t, r, "SELECT 'DELETE' FROM A -- UPDATE"); len(got) != 0 {
		t.Errorf("strings and comments flagged: %+v", got)
	}
}

func TestMultiStatement(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"two statements", "SELECT * FROM A; SELECT * FROM B", 1},
		{"trailing semicolon only", "SELECT * FROM A;", 0},
		{"escaped quote keeps string open", "SELECT 'It''s a test; SELECT' FROM A", 0},
		{"semicolon in line comment", "SELECT * FROM A -- x; SELECT y\n", 0},
		{"semicolon in block comment", "SELECT * FROM A /* ; SELECT */", 0},
		{"three statements", "SELECT 1; SELECT 2; SELECT 3", 2},
	}
	r := &multiStatement{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
			for _, d := range got {
				if !strings.Contains(d.Message, "single SQL statement") {
					t.Errorf("message %q does not mention single SQL statement", d.Message)
				}
			}
		})
	}
}

func TestCommaValidation(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
		msg  string
	}{
		{"clean list", "SELECT a, b, c FROM T", 0, ""},
		{"duplicate comma", "SELECT a,,b FROM T", 1, "duplicate"},
		{"comma right after select", "SELECT , a FROM T", 1, "unexpected comma after SELECT"},
		{"trailing before from", "SELECT a, FROM T", 1, "trailing"},
		{"trailing at end", "SELECT a, b,", 1, "trailing"},
		{"trailing before close paren", "SELECT * FROM T WHERE id IN (1, 2,)", 1, "trailing"},
	}
	r := &commaValidation{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
			if tt.msg != "" && !strings.Contains(got[0].Message, tt.msg) {
				t.Errorf("message %q does not contain %q", got[0].Message, tt.msg)
			}
		})
	}
}

func TestSubqueryWithoutAlias(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"missing alias", "SELECT * FROM (SELECT id FROM A)", 1},
		{"explicit alias", "SELECT * FROM (SELECT id FROM A) AS sub", 0},
		{"implicit alias", "SELECT * FROM (SELECT id FROM A) sub", 0},
		{"in predicate is fine", "SELECT * FROM T WHERE id IN (SELECT id FROM A)", 0},
		{"exists predicate is fine", "SELECT * FROM T WHERE EXISTS (SELECT 1 FROM A)", 0},
		{"from list continuation", "SELECT * FROM T, (SELECT id FROM A)", 1},
		{"unterminated while typing", "SELECT * FROM (SELECT id FROM A", 0},
		{"subquery inside a string", "SELECT '(SELECT x FROM y)' FROM A", 0},
	}
	r := &subqueryWithoutAlias{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestSelfJoinSameAlias(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"same bracketed table same alias", "FROM [Employees] a JOIN [Employees] a ON a.id=a.manager_id", 1},
		{"distinct aliases", "FROM [Employees] a JOIN [Employees] b ON a.id=b.manager_id", 0},
		{"brackets ignored in comparison", "SELECT * FROM Employees JOIN [Employees] ON 1=1", 1},
		{"different tables", "SELECT * FROM A a JOIN B a ON a.x=a.y", 0},
		{"same table in different scopes", "SELECT * FROM A WHERE id IN (SELECT id FROM A)", 0},
	}
	r := &selfJoinSameAlias{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestUnsupportedFunctions(t *testing.T) {
	r := &unsupportedFunctions{}

	got := checkRule(t, r, "SELECT NOW() FROM A")
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(got), got)
	}
	if !strings.Contains(got[0].Message, "GETDATE()") {
		t.Errorf("message %q does not suggest GETDATE()", got[0].Message)
	}

	got = checkRule(t, r, "SELECT GROUP_CONCAT(name) FROM A")
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(got), got)
	}
	if strings.Contains(got[0].Message, "instead") {
		t.Errorf("message %q suggests an alternative that does not exist", got[0].Message)
	}

	if got := checkRule(t, r, "SELECT 'NOW()' FROM A -- NOW()"); len(got) != 0 {
		t.Errorf("strings and comments flagged: %+v", got)
	}
	if got := checkRule(t, r, "SELECT [NOW] FROM A"); len(got) != 0 {
		t.Errorf("bracketed identifier flagged: %+v", got)
	}
	if got := checkRule(t, r, "SELECT now FROM A"); len(got) != 0 {
		t.Errorf("non-call identifier flagged: %+v", got)
	}
}

func TestOffsetWithoutOrderBy(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"with order by", "SELECT * FROM A ORDER BY id OFFSET 10 ROWS", 0},
		{"without order by", "SELECT * FROM A OFFSET 10 ROWS", 1},
		{"order by in other scope does not count", "SELECT * FROM (SELECT id FROM A) s OFFSET 10 ROWS", 1},
	}
	r := &offsetWithoutOrderBy{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestOrderByInSubquery(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"top level order by", "SELECT * FROM A ORDER BY id", 0},
		{"order by inside subquery", "SELECT * FROM (SELECT id FROM A ORDER BY id) s", 1},
		{"order by after subquery", "SELECT * FROM (SELECT id FROM A) s ORDER BY id", 0},
		{"plain parens are not a subquery", "SELECT * FROM A WHERE (x = 1) ORDER BY id", 0},
	}
	r := &orderByInSubquery{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestAliasInClause(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"alias in where", "SELECT Email AS e FROM A WHERE e = 'x'", 1},
		{"alias in group by", "SELECT Email AS e, COUNT(*) FROM A GROUP BY e", 1},
		{"alias in having", "SELECT COUNT(*) AS n FROM A GROUP BY x HAVING n > 1", 1},
		{"alias only in order by is fine", "SELECT Email AS e FROM A ORDER BY e", 0},
		{"qualified reference is a field", "SELECT t.e AS e FROM A t WHERE t.e = 'x'", 0},
		{"no aliases", "SELECT Email FROM A WHERE Email = 'x'", 0},
	}
	r := &aliasInClause{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestUnbracketedNames(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"bracketed multi-word name", "SELECT * FROM [Master Subscriber List]", 0},
		{"table plus alias", "SELECT * FROM Subscribers s", 0},
		{"three bare words", "SELECT * FROM Master Subscriber List", 1},
		{"dashed name", "SELECT * FROM Send-Log", 1},
	}
	r := &unbracketedNames{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
			for _, d := range got {
				if d.Severity != Warning {
					t.Errorf("severity = %v, want warning", d.Severity)
				}
			}
		})
	}
}

func TestAmbiguousField(t *testing.T) {
	fields := map[string][]string{
		"subscribers": {"Id", "Email", "Status"},
		"sends":       {"Id", "SubscriberId", "SentAt"},
	}
	r := &ambiguousField{}

	ctx := NewContext("SELECT Id FROM Subscribers s JOIN Sends d ON s.Id = d.SubscriberId")
	ctx.TableFields = fields
	got := r.Check(ctx)
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(got), got)
	}
	if !strings.Contains(got[0].Message, "Id") {
		t.Errorf("message %q does not name the field", got[0].Message)
	}

	ctx = NewContext("SELECT s.Id FROM Subscribers s JOIN Sends d ON s.Id = d.SubscriberId")
	ctx.TableFields = fields
	if got := r.Check(ctx); len(got) != 0 {
		t.Errorf("qualified reference flagged: %+v", got)
	}

	ctx = NewContext("SELECT Email FROM Subscribers s JOIN Sends d ON s.Id = d.SubscriberId")
	ctx.TableFields = fields
	if got := r.Check(ctx); len(got) != 0 {
		t.Errorf("single-owner field flagged: %+v", got)
	}

	// no metadata, no findings
	if got := checkRule(t, r, "SELECT Id FROM Subscribers JOIN Sends ON 1=1"); len(got) != 0 {
		t.Errorf("rule produced diagnostics without metadata: %+v", got)
	}
}

func TestAggregateGroupBy(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"grouped field", "SELECT Status, COUNT(*) FROM A GROUP BY Status", 0},
		{"ungrouped field", "SELECT Status, COUNT(*) FROM A", 1},
		{"qualified grouped field", "SELECT a.Status, COUNT(*) FROM A a GROUP BY a.Status", 0},
		{"no aggregate no findings", "SELECT Status, Email FROM A", 0},
		{"aggregate only", "SELECT COUNT(*) FROM A", 0},
		{"two ungrouped fields", "SELECT Status, Email, COUNT(*) FROM A GROUP BY Status", 1},
	}
	r := &aggregateGroupBy{}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRule(t, r, tt.sql)
			if len(got) != tt.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

type panickyRule struct{}

func (*panickyRule) ID() string                  { return "panicky" }
func (*panickyRule) Name() string                { return "Panicky" }
func (*panickyRule) Check(*Context) []Diagnostic { panic("boom") }

type fixedRule struct{ out []Diagnostic }

func (*fixedRule) ID() string                    { return "fixed" }
func (*fixedRule) Name() string                  { return "Fixed" }
func (r *fixedRule) Check(*Context) []Diagnostic { return r.out }

func TestRunIsolatesPanickingRule(t *testing.T) {
	want := []Diagnostic{{Message: "kept", Severity: Warning, Start: 1, End: 2}}
	got := Run(NewContext("SELECT 1"), []Rule{&panickyRule{}, &fixedRule{out: want}})
	if len(got) != 1 || got[0].Message != "kept" {
		t.Fatalf("got %+v, want the surviving rule's diagnostic", got)
	}
}

func TestRunOrdersByStartThenSeverity(t *testing.T) {
	r := &fixedRule{out: []Diagnostic{
		{Message: "late", Severity: Error, Start: 9, End: 10},
		{Message: "early warning", Severity: Warning, Start: 2, End: 3},
		{Message: "early error", Severity: Error, Start: 2, End: 3},
	}}
	got := Run(NewContext("SELECT 1"), []Rule{r})
	order := []string{"early error", "early warning", "late"}
	for i, msg := range order {
		if got[i].Message != msg {
			t.Fatalf("position %d = %q, want %q (full: %+v)", i, got[i].Message, msg, got)
		}
	}
}

func TestWithout(t *testing.T) {
	rules := []Rule{&panickyRule{}, &fixedRule{}}
	got := Without(rules, []string{"panicky", "no-such-rule"})
	if len(got) != 1 || got[0].ID() != "fixed" {
		t.Fatalf("got %d rules, want only fixed", len(got))
	}
	if kept := Without(rules, nil); len(kept) != 2 {
		t.Fatalf("nil filter dropped rules: %d", len(kept))
	}
}

func TestSeverityString(t *testing.T) {
	if Error.String() != "error" || Prereq.String() != "prereq" || Warning.String() != "warning" {
		t.Error("severity names changed")
	}
}
