package datasource

import (
	"context"
	"fmt"
)

// fakeFetcher serves canned bodies per url
type fakeFetcher struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("no body for %s", url)
	}
	return []byte(body), nil
}

func testDescriptor(name string, dateColumns ...string) Descriptor {
	return Descriptor{
		Name:        name,
		Kind:        InfectionCases,
		BaseURL:     "https://example.com/",
		Endpoint:    name,
		DateColumns: dateColumns,
	}
}
