package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/d1vyadharsh1n1/MetroX/core/monitoring"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func TestOnConnectPublishesStatusAndSubscribes(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", QoS: 1, AcceptInput: true})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if len(mc.published) != 1 || mc.published[0].topic != "metrox/status" {
		t.Fatalf("online status not published: %+v", mc.published)
	}
	if len(mc.subscribed) != 1 || mc.subscribed[0].topic != cli.InputTopic() || mc.subscribed[0].qos != 1 {
		t.Fatalf("input subscription missing: %+v", mc.subscribed)
	}
	if !mc.opts.WillEnabled || mc.opts.WillTopic != "metrox/status" || string(mc.opts.WillPayload) != "offline" {
		t.Fatalf("will options incorrect")
	}
}

func TestTopics(t *testing.T) {
	withMockClient(t, &mockClient{})
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", TopicPrefix: "kmrl"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if got := cli.OverrideTopic("Pettah Depot"); got != "kmrl/depot/pettah-depot/override" {
		t.Fatalf("override topic = %s", got)
	}
	if got := cli.OverrideTopic(""); got != "kmrl/depot/unknown/override" {
		t.Fatalf("override topic = %s", got)
	}
	if cli.ScheduleTopic() != "kmrl/schedule" || cli.RunTopic() != "kmrl/run" {
		t.Fatalf("unexpected topics")
	}
}

func TestInputRelayed(t *testing.T) {
	withMockClient(t, &mockClient{})
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", AcceptInput: true})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	var got string
	var custom bool
	cli.OnInput(func(v string, c bool) error {
		got, custom = v, c
		return nil
	})
	cli.onMessage(nil, mockMessage{[]byte(`{"value":"KM-T105","custom":true}`)})
	if got != "KM-T105" || !custom {
		t.Fatalf("input not relayed: %q %v", got, custom)
	}
	cli.onMessage(nil, mockMessage{[]byte(`not json`)})
	if got != "KM-T105" {
		t.Fatalf("invalid payload should be ignored")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc.published = nil
	mc.publishErrs = []error{fmt.Errorf("net fail"), nil}
	if err := cli.Publish("metrox/schedule", map[string]int{"trains": 3}, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries, got %d publishes", len(mc.published))
	}
}

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(any, map[string]string) {}
func (r *recordMonitor) Flush(time.Duration) bool            { return true }

func TestPublishErrorCaptured(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc.publishErrs = []error{fmt.Errorf("net fail"), fmt.Errorf("net fail")}
	err = cli.Publish("metrox/run", "x", false)
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("expected ErrPublish, got %v", err)
	}
	if mon.err == nil || mon.tags["module"] != "mqtt" || mon.tags["topic"] != "metrox/run" {
		t.Fatalf("error not captured: %+v", mon.tags)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("disabled config should validate: %v", err)
	}
	if err := (Config{Broker: "tcp://x:1883", QoS: 3}).Validate(); err == nil {
		t.Fatalf("expected qos error")
	}
	if err := (Config{Broker: "tcp://x:1883", AuthMethod: "kerberos"}).Validate(); err == nil {
		t.Fatalf("expected auth error")
	}
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic string
		qos   byte
	}
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, _ interface{}) paho.Token {
	m.published = append(m.published, struct {
		topic string
		qos   byte
	}{topic, qos})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct{ p []byte }

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return "" }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
