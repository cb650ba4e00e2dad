package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/Agrid-Dev/hvacrux/internal/controllers/dto"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
	"github.com/Agrid-Dev/hvacrux/internal/ports"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Config struct {
	// Identity
	SiteID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainSnapshot  bool
	PublishInterval time.Duration

	Username string
	Password string
}

type Controller struct {
	svc ports.EstimatorService
	cfg Config
	log *slog.Logger

	client mqtt.Client
}

func New(svc ports.EstimatorService, cfg Config, logger *slog.Logger) (*Controller, error) {
	// ---- defaults ----

	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}

	if cfg.SiteID == "" {
		return nil, errors.New("mqtt: SiteID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "hvacrux/" + cfg.SiteID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "hvacrux-" + cfg.SiteID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
		log: logger.With("controller", "mqtt", "site_id", cfg.SiteID),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		topic := c.topic("set/+")
		token := cl.Subscribe(topic, c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Error("subscribe failed", "topic", topic, "err", err)
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.log.Info("connected", "broker", c.cfg.BrokerURL, "base_topic", c.cfg.BaseTopic)

	// Publish loop: publish snapshot on interval, and only when changed.
	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	last := c.publishSnapshot()

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			cur := c.svc.Get()
			if !reflect.DeepEqual(cur, last) {
				last = c.publishSnapshot()
			}
		}
	}
}

// publishSnapshot publishes the current state and returns what it published.
func (c *Controller) publishSnapshot() estimator.Snapshot {
	s := c.svc.Get()
	b, err := json.Marshal(dto.FromSnapshot(c.cfg.SiteID, s))
	if err != nil {
		c.log.Error("encode snapshot", "err", err)
		return s
	}
	c.client.Publish(c.topic("snapshot"), c.cfg.QoS, c.cfg.RetainSnapshot, b)
	return s
}

// Command payload format: {"value": ...}
type valueReq[T any] struct {
	Value *T `json:"value"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/set/<field>
	t := msg.Topic()
	prefix := strings.TrimRight(c.cfg.BaseTopic, "/") + "/set/"
	if !strings.HasPrefix(t, prefix) {
		return
	}
	field := strings.TrimPrefix(t, prefix)

	if err := c.dispatch(field, msg.Payload()); err != nil {
		c.log.Warn("dropped command", "field", field, "err", err)
	}
}

func (c *Controller) dispatch(field string, payload []byte) error {
	switch field {
	case "outdoor_temperature":
		v, err := decodeValueStrict[float64](payload)
		if err != nil {
			return err
		}
		return c.svc.SetOutdoorTemperature(v)

	case "indoor_temperature":
		v, err := decodeValueStrict[float64](payload)
		if err != nil {
			return err
		}
		return c.svc.SetIndoorTemperature(v)

	case "envelope":
		v, err := decodeValueStrict[dto.Envelope](payload)
		if err != nil {
			return err
		}
		return c.svc.SetEnvelope(v.ToDomain())

	case "location":
		v, err := decodeValueStrict[dto.Location](payload)
		if err != nil {
			return err
		}
		return c.svc.SetLocation(v.ToDomain())

	case "floors":
		v, err := decodeValueStrict[[]dto.Floor](payload)
		if err != nil {
			return err
		}
		return c.svc.SetFloors(dto.ToFloors(v))

	case "floor_count":
		v, err := decodeValueStrict[int](payload)
		if err != nil {
			return err
		}
		return c.svc.SetFloorCount(v)

	default:
		return fmt.Errorf("unknown field %q", field)
	}
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func decodeValueStrict[T any](b []byte) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req valueReq[T]
	if err := dec.Decode(&req); err != nil {
		return zero, err
	}
	if req.Value == nil {
		return zero, errors.New("missing field 'value'")
	}
	return *req.Value, nil
}
