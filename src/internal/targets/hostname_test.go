package targets

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"reflect"
	"sort"
	"testing"

	"github.com/miekg/dns"
)

type fakeLookuper struct {
	addrs []netip.Addr
	err   error
	hosts []string
}

func (f *fakeLookuper) LookupIP(_ context.Context, host string) ([]netip.Addr, error) {
	f.hosts = append(f.hosts, host)
	return f.addrs, f.err
}

func staticStrategy(result []netip.Addr, err error, calls *int) Strategy {
	return func(context.Context, string) ([]netip.Addr, error) {
		*calls++
		return result, err
	}
}

func TestHostResolver_StrategyOrder(t *testing.T) {
	tests := []struct {
		name        string
		first       []netip.Addr
		firstErr    error
		second      []netip.Addr
		secondErr   error
		want        []netip.Addr
		secondCalls int
	}{
		{
			name:        "first strategy answers",
			first:       addrs("192.0.2.1"),
			second:      addrs("192.0.2.2"),
			want:        addrs("192.0.2.1"),
			secondCalls: 0,
		},
		{
			name:        "first strategy fails",
			firstErr:    fmt.Errorf("no such host"),
			second:      addrs("192.0.2.2", "2001:db8::2"),
			want:        addrs("192.0.2.2", "2001:db8::2"),
			secondCalls: 1,
		},
		{
			name:        "first strategy is empty",
			second:      addrs("192.0.2.2"),
			want:        addrs("192.0.2.2"),
			secondCalls: 1,
		},
		{
			name:        "every strategy fails",
			firstErr:    fmt.Errorf("no such host"),
			secondErr:   fmt.Errorf("timeout"),
			want:        nil,
			secondCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var firstCalls, secondCalls int
			h := NewHostResolver(
				staticStrategy(tt.first, tt.firstErr, &firstCalls),
				staticStrategy(tt.second, tt.secondErr, &secondCalls),
			)

			got := h.Resolve(context.Background(), "scanme.example")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
			if firstCalls != 1 {
				t.Errorf("first strategy called %d times, want 1", firstCalls)
			}
			if secondCalls != tt.secondCalls {
				t.Errorf("second strategy called %d times, want %d", secondCalls, tt.secondCalls)
			}
		})
	}
}

func TestHostResolver_IDNA(t *testing.T) {
	var seen []string
	h := NewHostResolver(func(_ context.Context, host string) ([]netip.Addr, error) {
		seen = append(seen, host)
		return nil, nil
	})

	h.Resolve(context.Background(), "Bücher.Example")
	h.Resolve(context.Background(), "_service.example")

	want := []string{"xn--bcher-kva.example", "_service.example"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("strategies saw %q, want %q", seen, want)
	}
}

func TestHostResolver_NoStrategies(t *testing.T) {
	if got := NewHostResolver().Resolve(context.Background(), "scanme.example"); got != nil {
		t.Errorf("Resolve() = %v, want nil", got)
	}
}

func TestResolverLookup(t *testing.T) {
	handle := &fakeLookuper{addrs: addrs("198.51.100.1", "2001:db8::1")}

	got, err := ResolverLookup(handle)(context.Background(), "scanme.example")
	if err != nil {
		t.Fatalf("ResolverLookup() error = %v", err)
	}
	if !reflect.DeepEqual(got, handle.addrs) {
		t.Errorf("ResolverLookup() = %v, want %v", got, handle.addrs)
	}
	if !reflect.DeepEqual(handle.hosts, []string{"scanme.example"}) {
		t.Errorf("handle queried for %q", handle.hosts)
	}

	got, err = ResolverLookup(nil)(context.Background(), "scanme.example")
	if err != nil || got != nil {
		t.Errorf("ResolverLookup(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestSystemLookup_Localhost(t *testing.T) {
	got, err := SystemLookup(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("SystemLookup() error = %v", err)
	}
	if want := addrs("127.0.0.1"); !reflect.DeepEqual(got, want) {
		t.Errorf("SystemLookup() = %v, want %v", got, want)
	}
}

func TestDefaultHostResolver_FallsBackToHandle(t *testing.T) {
	handle := &fakeLookuper{addrs: addrs("198.51.100.7")}
	h := DefaultHostResolver(handle)

	// The system resolver rejects empty labels without a network round-trip.
	got := h.Resolve(context.Background(), "scanme..example")
	if want := addrs("198.51.100.7"); !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

// useMockSystemResolver points the platform lookups at an in-process DNS
// server answering A queries from records. Other names get NXDOMAIN.
func useMockSystemResolver(t *testing.T, records map[string][]string) {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen packet: %v", err)
	}

	started := make(chan struct{})
	server := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			m.Authoritative = true
			m.RecursionAvailable = true
			q := r.Question[0]
			ips, ok := records[q.Name]
			if !ok {
				m.Rcode = dns.RcodeNameError
			}
			if q.Qtype == dns.TypeA {
				for _, ip := range ips {
					rr, _ := dns.NewRR(fmt.Sprintf("%s 60 IN A %s", q.Name, ip))
					m.Answer = append(m.Answer, rr)
				}
			}
			_ = w.WriteMsg(m)
		}),
	}
	go func() {
		_ = server.ActivateAndServe()
	}()
	<-started

	serverAddr := pc.LocalAddr().String()
	previous := systemResolver
	systemResolver = &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", serverAddr)
		},
	}

	t.Cleanup(func() {
		systemResolver = previous
		_ = server.Shutdown()
	})
}

func sortedStrings(in []netip.Addr) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, a.String())
	}
	sort.Strings(out)
	return out
}

func TestSystemLookup_MultipleRecords(t *testing.T) {
	useMockSystemResolver(t, map[string][]string{"lb.example.com.": {"10.0.0.1", "10.0.0.2"}})
	ctx := context.Background()

	all, err := SystemLookupAll(ctx, "lb.example.com")
	if err != nil {
		t.Fatalf("SystemLookupAll() error = %v", err)
	}
	if got, want := sortedStrings(all), []string{"10.0.0.1", "10.0.0.2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SystemLookupAll() = %v, want %v", got, want)
	}

	first, err := SystemLookup(ctx, "lb.example.com")
	if err != nil {
		t.Fatalf("SystemLookup() error = %v", err)
	}
	if len(first) != 1 || first[0] != all[0] {
		t.Errorf("SystemLookup() = %v, want only %v", first, all[0])
	}
}

func TestParse_ExcludesEveryAddressOfHost(t *testing.T) {
	useMockSystemResolver(t, map[string][]string{"lb.example.com.": {"10.0.0.1", "10.0.0.2"}})

	p := NewParser(DefaultHostResolver(nil), &CollectingWarner{})
	got := p.Parse(context.Background(), Input{
		Addresses: []string{"10.0.0.0/30"},
		Exclude:   []string{"lb.example.com"},
	})

	if want := addrs("10.0.0.0", "10.0.0.3"); !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

func TestHostResolver_ResolveAllUsesOwnStrategies(t *testing.T) {
	h := &HostResolver{
		strategies: []Strategy{func(context.Context, string) ([]netip.Addr, error) {
			return addrs("192.0.2.1"), nil
		}},
		all: []Strategy{func(context.Context, string) ([]netip.Addr, error) {
			return addrs("192.0.2.1", "192.0.2.2"), nil
		}},
	}
	ctx := context.Background()

	if got, want := h.Resolve(ctx, "scanme.example"), addrs("192.0.2.1"); !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	if got, want := h.ResolveAll(ctx, "scanme.example"), addrs("192.0.2.1", "192.0.2.2"); !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveAll() = %v, want %v", got, want)
	}

	// NewHostResolver shares one strategy list.
	shared := NewHostResolver(h.all...)
	if got := shared.Resolve(ctx, "scanme.example"); len(got) != 2 {
		t.Errorf("NewHostResolver Resolve() = %v, want both addresses", got)
	}
}
