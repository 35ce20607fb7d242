package dialect

import "strings"

// UnsupportedFunction describes a function the remote backend rejects,
// with the dialect-native alternative when one exists.
type UnsupportedFunction struct {
	Name        string
	Alternative string
}

// unsupportedFunctions lists call-form identifiers that the backend does
// not implement. Most entries are habits carried over from other SQL
// dialects, so the alternative points at the accepted spelling.
var unsupportedFunctions = map[string]UnsupportedFunction{
	"CURDATE":       {Name: "CURDATE", Alternative: "GETDATE()"},
	"CURRENT_DATE":  {Name: "CURRENT_DATE", Alternative: "GETDATE()"},
	"DATE_ADD":      {Name: "DATE_ADD", Alternative: "DATEADD()"},
	"DATE_FORMAT":   {Name: "DATE_FORMAT", Alternative: "FORMAT()"},
	"DATE_SUB":      {Name: "DATE_SUB", Alternative: "DATEADD() with a negative interval"},
	"GROUP_CONCAT":  {Name: "GROUP_CONCAT"},
	"IFNULL":        {Name: "IFNULL", Alternative: "ISNULL()"},
	"INSTR":         {Name: "INSTR", Alternative: "CHARINDEX()"},
	"LCASE":         {Name: "LCASE", Alternative: "LOWER()"},
	"LENGTH":        {Name: "LENGTH", Alternative: "LEN()"},
	"LOCATE":        {Name: "LOCATE", Alternative: "CHARINDEX()"},
	"MID":           {Name: "MID", Alternative: "SUBSTRING()"},
	"NOW":           {Name: "NOW", Alternative: "GETDATE()"},
	"NVL":           {Name: "NVL", Alternative: "ISNULL()"},
	"RAND":          {Name: "RAND", Alternative: "NEWID()"},
	"REGEXP_LIKE":   {Name: "REGEXP_LIKE", Alternative: "LIKE with wildcards"},
	"STRFTIME":      {Name: "STRFTIME", Alternative: "FORMAT()"},
	"SUBSTR":        {Name: "SUBSTR", Alternative: "SUBSTRING()"},
	"SYSDATE":       {Name: "SYSDATE", Alternative: "GETDATE()"},
	"TO_CHAR":       {Name: "TO_CHAR", Alternative: "CONVERT()"},
	"TO_DATE":       {Name: "TO_DATE", Alternative: "CONVERT()"},
	"UCASE":         {Name: "UCASE", Alternative: "UPPER()"},
	"UNIX_TIMESTAMP": {Name: "UNIX_TIMESTAMP"},
}

// LookupUnsupportedFunction reports whether name is a known-unsupported
// function. The lookup is case-insensitive.
func LookupUnsupportedFunction(name string) (UnsupportedFunction, bool) {
	fn, ok := unsupportedFunctions[strings.ToUpper(name)]
	return fn, ok
}
