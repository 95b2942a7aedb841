package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	geojson "github.com/paulmach/go.geojson"

	"itinerary-geometry/internal/geo"
	"itinerary-geometry/internal/itinerary"
	"itinerary-geometry/internal/pipeline"
)

type NATSPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
	logSubjects   bool
	metrics       PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, subjectPrefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("itinerary-geometry"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, subjectPrefix: subjectPrefix, logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// GeometryMessage is the wire form of one display state.
type GeometryMessage struct {
	Generation uint64                     `json:"generation"`
	RouteID    string                     `json:"routeId"`
	Status     pipeline.Status            `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	BBox       *geo.BoundingBox           `json:"bbox"`
	Dropped    []pipeline.DroppedSegment  `json:"dropped,omitempty"`
	Geometry   *geojson.FeatureCollection `json:"geometry"`
	Error      string                     `json:"error,omitempty"`
}

func NewGeometryMessage(res pipeline.Result, now time.Time) GeometryMessage {
	return GeometryMessage{
		Generation: res.Generation,
		RouteID:    res.RouteID,
		Status:     res.Status,
		Timestamp:  now,
		BBox:       res.BBox,
		Dropped:    res.Dropped,
		Geometry:   geo.FeatureCollection(res.Polylines, res.BBox),
		Error:      res.Err,
	}
}

// Subject is <prefix>.<routeID>; an empty route id maps to "_".
func (p *NATSPublisher) Subject(routeID string) string {
	return fmt.Sprintf("%s.%s", p.subjectPrefix, subjectToken(routeID))
}

// ActiveSubject always carries the displayed state, whichever route it
// belongs to. Clears and route switches are visible there.
func (p *NATSPublisher) ActiveSubject() string {
	return p.subjectPrefix + ".active"
}

// subjects lists where one state is published: the route's own subject and
// the active subject.
func (p *NATSPublisher) subjects(routeID string) []string {
	own, active := p.Subject(routeID), p.ActiveSubject()
	if own == active {
		return []string{active}
	}
	return []string{own, active}
}

// Publish implements pipeline.Sink. nats.Conn.Publish only buffers, so this
// does not block the orchestrator on the network.
func (p *NATSPublisher) Publish(res pipeline.Result) {
	b, err := json.Marshal(NewGeometryMessage(res, time.Now()))
	if err != nil {
		log.Printf("marshal geometry generation=%d: %v", res.Generation, err)
		return
	}
	for _, subject := range p.subjects(res.RouteID) {
		if p.logSubjects {
			log.Printf("nats publish subject=%s status=%s", subject, res.Status)
		}
		start := time.Now()
		err := p.nc.Publish(subject, b)
		if p.metrics != nil {
			p.metrics.PublishObserve(time.Since(start))
			if err != nil {
				p.metrics.NATSPublishErrInc()
			} else {
				p.metrics.NATSPublishedInc()
			}
		}
		if err != nil {
			log.Printf("publish error subject=%s: %v", subject, err)
		}
	}
}

// SubscribeItineraries delivers every decodable route published on subject.
// A null payload is delivered as a nil route.
func (p *NATSPublisher) SubscribeItineraries(subject string, handle func(*itinerary.Route)) (*nats.Subscription, error) {
	return p.nc.Subscribe(subject, func(m *nats.Msg) {
		r, err := itinerary.Decode(m.Data)
		if err != nil {
			log.Printf("drop itinerary on %s: %v", m.Subject, err)
			return
		}
		handle(r)
	})
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
