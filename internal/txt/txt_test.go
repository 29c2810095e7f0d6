package txt

import (
	"errors"
	"testing"
	"time"

	"github.com/markdingo/cymrudns/internal/resolver"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResolver returns a canned reply or error and remembers the query
type mockResolver struct {
	query *dns.Msg
	qMeta *resolver.QueryMetaData
	reply *dns.Msg
	err   error
}

func (t *mockResolver) Resolve(q *dns.Msg, qMeta *resolver.QueryMetaData) (*dns.Msg, *resolver.ResponseMetaData, error) {
	t.query = q
	t.qMeta = qMeta
	if t.err != nil {
		return nil, nil, t.err
	}
	r := t.reply.Copy()
	r.SetReply(q)
	r.Rcode = t.reply.Rcode
	r.Answer = t.reply.Answer

	return r, &resolver.ResponseMetaData{FinalServerUsed: "mock", TransportType: resolver.DNSTransportUDP}, nil
}

func newTXT(t *testing.T, name string, ttl uint32, txt ...string) dns.RR {
	t.Helper()
	return &dns.TXT{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: ttl},
		Txt: txt,
	}
}

func TestLookupTXT(t *testing.T) {
	qName := "AS23028.asn.cymru.com."
	reply := &dns.Msg{}
	reply.Answer = []dns.RR{
		newTXT(t, qName, 3600, "23028 | US | arin | 2002-01-04 | TEAM-CYMRU - Team Cymru Inc., US"),
		newTXT(t, qName, 600, "23028 | US | arin | 2002-01-04 ", "| second row"),
	}
	mock := &mockResolver{reply: reply}
	res := New(mock)

	rows, ttl, err := res.LookupTXT(qName)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"23028 | US | arin | 2002-01-04 | TEAM-CYMRU - Team Cymru Inc., US",
		"23028 | US | arin | 2002-01-04 | second row",
	}, rows)
	assert.Equal(t, 600*time.Second, ttl)

	require.NotNil(t, mock.query)
	require.Len(t, mock.query.Question, 1)
	assert.Equal(t, qName, mock.query.Question[0].Name)
	assert.Equal(t, dns.TypeTXT, mock.query.Question[0].Qtype)
	assert.Equal(t, uint16(dns.ClassINET), mock.query.Question[0].Qclass)
	assert.True(t, mock.query.RecursionDesired)
	assert.NotNil(t, mock.query.IsEdns0(), "Query should carry an EDNS0 OPT")
	assert.NotNil(t, mock.qMeta, "QueryMetaData must never be nil")
}

func TestLookupTXTNotFQDN(t *testing.T) {
	mock := &mockResolver{reply: &dns.Msg{}}
	_, _, err := New(mock).LookupTXT("AS1.asn.cymru.com")
	require.NoError(t, err)
	assert.Equal(t, "AS1.asn.cymru.com.", mock.query.Question[0].Name)
}

func TestLookupTXTEmpty(t *testing.T) {
	tt := []struct {
		name  string
		rcode int
	}{
		{"NODATA", dns.RcodeSuccess},
		{"NXDOMAIN", dns.RcodeNameError},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			reply := &dns.Msg{}
			reply.Rcode = tc.rcode
			rows, ttl, err := New(&mockResolver{reply: reply}).LookupTXT("AS0.asn.cymru.com.")
			require.NoError(t, err)
			assert.Empty(t, rows)
			assert.Zero(t, ttl)
		})
	}
}

func TestLookupTXTIgnoresOtherTypes(t *testing.T) {
	qName := "1.0.0.10.origin.asn.cymru.com."
	cname, err := dns.NewRR(qName + " 60 IN CNAME elsewhere.example.net.")
	require.NoError(t, err)
	reply := &dns.Msg{}
	reply.Answer = []dns.RR{cname}

	rows, _, err := New(&mockResolver{reply: reply}).LookupTXT(qName)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLookupTXTResolutionError(t *testing.T) {
	for _, rcode := range []int{dns.RcodeServerFailure, dns.RcodeRefused, dns.RcodeFormatError} {
		reply := &dns.Msg{}
		reply.Rcode = rcode
		_, _, err := New(&mockResolver{reply: reply}).LookupTXT("AS1.asn.cymru.com.")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrResolution)
		assert.NotErrorIs(t, err, ErrIO)

		var txtErr *Error
		require.True(t, errors.As(err, &txtErr))
		assert.Equal(t, rcode, txtErr.Rcode)
		assert.Equal(t, "AS1.asn.cymru.com.", txtErr.QName)
		assert.Contains(t, err.Error(), dns.RcodeToString[rcode])
	}
}

func TestLookupTXTIOError(t *testing.T) {
	cause := errors.New("localresolver: Query timeout: 5s")
	_, _, err := New(&mockResolver{err: cause}).LookupTXT("AS1.asn.cymru.com.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrResolution)
	assert.Contains(t, err.Error(), "AS1.asn.cymru.com.")
}
