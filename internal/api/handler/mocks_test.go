package handler_test

import (
	"context"
	"errors"
	"sync"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/worker"
)

type mockGenerator struct {
	mu       sync.Mutex
	requests []itinerary.PlanRequest
	err      error
}

func (m *mockGenerator) GeneratePlan(_ context.Context, req itinerary.PlanRequest) (*itinerary.GeneratedPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &itinerary.GeneratedPlan{
		Destination: req.Destination,
		Days:        req.Days,
		Persons:     req.Persons,
		Currency:    req.Currency("INR"),
		Itinerary:   []itinerary.DayPlan{{Day: 1}},
		Provenance:  itinerary.ProvenanceDeterministic,
	}, nil
}

func (m *mockGenerator) Requests() []itinerary.PlanRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]itinerary.PlanRequest(nil), m.requests...)
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []worker.Message
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, msg worker.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.messages = append(m.messages, msg)
	return "msg-1", nil
}

func (m *mockPublisher) Messages() []worker.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]worker.Message(nil), m.messages...)
}

type asyncGate bool

func (g asyncGate) IsAsyncGenerationDisabled(context.Context) bool {
	return bool(g)
}

type mockPinger struct {
	err error
}

func (m mockPinger) Ping(context.Context) error {
	return m.err
}

type mockGenerationStatus struct {
	providers []string
	inFlight  []string
}

func (m mockGenerationStatus) Providers() []string { return m.providers }
func (m mockGenerationStatus) InFlight() []string  { return m.inFlight }

var errUnavailable = errors.New("connection refused")
