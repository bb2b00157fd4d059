package tactcdn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTableBasic(t *testing.T) {
	body := "# comment\n" +
		"Name!STRING:0|Path!STRING:0|Hosts!STRING:0\r\n" +
		"us|tpr/wow|cdn1.example.com cdn2.example.com\n" +
		"eu|tpr/wow|cdn3.example.com\n"

	table := parseTable(body)
	require.Len(t, table.rows, 2)
	require.Equal(t, "us", table.rows[0]["Name"])
	require.Equal(t, []string{"cdn1.example.com", "cdn2.example.com"}, HostsOf(table.rows[0]))
}

func TestParseTableSkipsShortRows(t *testing.T) {
	body := "Name!STRING:0|Path!STRING:0|Hosts!STRING:0\n" +
		"us|tpr/wow\n" // missing Hosts field
	table := parseTable(body)
	require.Empty(t, table.rows)
}

func TestParseTablePrefersHostsOverServers(t *testing.T) {
	body := "Name!STRING:0|Hosts!STRING:0|Servers!STRING:0\n" +
		"us|h1.example.com|s1.example.com\n"
	table := parseTable(body)
	require.Equal(t, []string{"h1.example.com"}, HostsOf(table.rows[0]))
}

func TestParseConfigScalarsAndLists(t *testing.T) {
	body := "root = aabbccdd\n" +
		"encoding = cKeyHex eKeyHex\n" +
		"archives = a1 a2 a3\n"
	cfg := parseConfig(body)

	v, ok := cfg.Get("root")
	require.True(t, ok)
	require.Equal(t, "aabbccdd", v)

	list, ok := cfg.GetList("archives")
	require.True(t, ok)
	require.Equal(t, []string{"a1", "a2", "a3"}, list)
}
