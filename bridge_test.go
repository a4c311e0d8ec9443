package bridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/webviewkit/bridge"
	"github.com/webviewkit/bridge/transport/memtransport"
	"github.com/webviewkit/bridge/wire"
)

func newBridge(t *testing.T) (*bridge.Bridge, *memtransport.Transport) {
	t.Helper()
	tr := memtransport.New(bridge.Info{Kind: bridge.KindNative, Platform: "ios"})
	return bridge.New(tr, bridge.Options{}), tr
}

func await(t *testing.T, c *bridge.Call) (json.RawMessage, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Result(ctx)
}

func settled(c *bridge.Call) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

func TestSendCorrelatesSuccessEvent(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	msg, ok := tr.Last()
	if !ok {
		t.Fatal("no message delivered")
	}
	if msg.Method != "VKWebAppGetUserInfo" {
		t.Fatalf("expected VKWebAppGetUserInfo got %s", msg.Method)
	}
	if msg.RequestID != 1 {
		t.Fatalf("expected request_id 1 got %d", msg.RequestID)
	}

	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"id":42,"request_id":1}`)})
	data, err := await(t, call)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	var got struct {
		ID        int64 `json:"id"`
		RequestID int64 `json:"request_id"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 42 || got.RequestID != 1 {
		t.Fatalf("expected id 42 request_id 1 got %+v", got)
	}
	if n := b.PendingCount(); n != 0 {
		t.Fatalf("expected 0 pending got %d", n)
	}
}

func TestSendRejectsOnFailureEvent(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	tr.Emit(wire.Envelope{
		Type: "VKWebAppGetUserInfoFailed",
		Data: json.RawMessage(`{"error_type":"client_error","error_data":{"error_code":4,"error_reason":"User denied"},"request_id":1}`),
	})
	_, err := await(t, call)
	if err == nil {
		t.Fatal("expected rejection")
	}
	var ep *wire.ErrorPayload
	if !errors.As(err, &ep) {
		t.Fatalf("expected *wire.ErrorPayload got %T", err)
	}
	if ep.Type != wire.ErrorKindClient || ep.RequestID != 1 {
		t.Fatalf("unexpected payload %+v", ep)
	}
	ce, ok := ep.Data.(*wire.ClientError)
	if !ok {
		t.Fatalf("expected *wire.ClientError got %T", ep.Data)
	}
	if ce.Code != 4 || ce.Reason != "User denied" {
		t.Fatalf("unexpected error data %+v", ce)
	}
}

func TestRequestIDsUnique(t *testing.T) {
	b, tr := newBridge(t)
	for i := 0; i < 10; i++ {
		b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)
	}
	seen := map[int64]bool{}
	for _, msg := range tr.Sent() {
		if msg.RequestID == 0 {
			t.Fatal("missing request_id")
		}
		if seen[msg.RequestID] {
			t.Fatalf("request_id %d reused", msg.RequestID)
		}
		seen[msg.RequestID] = true
	}
	if n := b.PendingCount(); n != 10 {
		t.Fatalf("expected 10 pending got %d", n)
	}
}

func TestSettlementAtMostOnce(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"n":1,"request_id":1}`)})
	// A second matching event after settlement must be a no-op.
	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"n":2,"request_id":1}`)})

	data, err := await(t, call)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	var got struct {
		N int `json:"n"`
	}
	_ = json.Unmarshal(data, &got)
	if got.N != 1 {
		t.Fatalf("expected first settlement to win, got n=%d", got.N)
	}
}

func TestCorrelationTargetsOnlyMatchingID(t *testing.T) {
	b, tr := newBridge(t)
	first := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)
	second := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"request_id":2}`)})

	if !settled(second) {
		t.Fatal("second call should have settled")
	}
	if settled(first) {
		t.Fatal("first call should remain pending")
	}
	if n := b.PendingCount(); n != 1 {
		t.Fatalf("expected 1 pending got %d", n)
	}
}

func TestIDLessEventsSettleFIFO(t *testing.T) {
	b, tr := newBridge(t)
	first := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)
	second := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"n":1}`)})
	if !settled(first) || settled(second) {
		t.Fatal("oldest outstanding call must win an id-less event")
	}
	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"n":2}`)})
	if !settled(second) {
		t.Fatal("second call should settle on the second event")
	}

	data, _ := await(t, first)
	var got struct {
		N int `json:"n"`
	}
	_ = json.Unmarshal(data, &got)
	if got.N != 1 {
		t.Fatalf("expected first event for first call, got n=%d", got.N)
	}
}

func TestEchoedStringIDMatches(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)
	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"request_id":"1"}`)})
	if _, err := await(t, call); err != nil {
		t.Fatalf("result: %v", err)
	}
}

func TestUnmatchedResultEventDropped(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	// Wrong id and wrong event name: nothing settles, nothing breaks.
	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"request_id":99}`)})
	tr.Emit(wire.Envelope{Type: "VKWebAppShareResult", Data: json.RawMessage(`{"request_id":1}`)})

	if settled(call) {
		t.Fatal("call should remain pending")
	}
	if n := b.PendingCount(); n != 1 {
		t.Fatalf("expected 1 pending got %d", n)
	}
}

func TestRequestOnlyMethodResolvesImmediately(t *testing.T) {
	b, tr := newBridge(t)
	data, err := b.Send(context.Background(), "VKWebAppClose", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if data != nil {
		t.Fatalf("expected no payload got %s", data)
	}
	msg, _ := tr.Last()
	if msg.RequestID != 0 {
		t.Fatalf("request-only method must not carry request_id, got %d", msg.RequestID)
	}
	if n := b.PendingCount(); n != 0 {
		t.Fatalf("expected 0 pending got %d", n)
	}
}

func TestUnknownMethodCorrelatesByConvention(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppBrandNewThing", nil)
	msg, _ := tr.Last()
	if msg.RequestID == 0 {
		t.Fatal("unknown methods still get correlation ids")
	}
	tr.Emit(wire.Envelope{Type: "VKWebAppBrandNewThingResult", Data: json.RawMessage(`{"request_id":1}`)})
	if _, err := await(t, call); err != nil {
		t.Fatalf("result: %v", err)
	}
}

func TestDeliveryFailureRejectsImmediately(t *testing.T) {
	b, tr := newBridge(t)
	tr.FailDeliveries(errors.New("bridge gone"))
	_, err := b.Send(context.Background(), "VKWebAppGetUserInfo", nil)
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if n := b.PendingCount(); n != 0 {
		t.Fatalf("no pending entry may survive a failed delivery, got %d", n)
	}
}

func TestPushEventTriggersNoSettlement(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	var got []string
	l := bridge.ListenerFunc(func(e wire.Envelope) { got = append(got, e.Type) })
	b.Subscribe(&l)

	tr.Emit(wire.Envelope{Type: "VKWebAppViewHide", Data: json.RawMessage(`{}`)})
	if settled(call) {
		t.Fatal("push event must not settle a pending call")
	}
	if len(got) != 1 || got[0] != "VKWebAppViewHide" {
		t.Fatalf("expected listener to see the push event, got %v", got)
	}
}

func TestSupportsFailsClosed(t *testing.T) {
	b, _ := newBridge(t)
	if b.Supports("totally_unknown_method") {
		t.Fatal("unknown method must be unsupported")
	}
	if !b.Supports("VKWebAppGetUserInfo") {
		t.Fatal("catalogued method should be supported")
	}
	// VKWebAppClose is mobile-only and the transport reports ios.
	if !b.Supports("VKWebAppClose") {
		t.Fatal("VKWebAppClose should be supported on ios")
	}
}

func TestSupportsRespectsPlatform(t *testing.T) {
	tr := memtransport.New(bridge.Info{Kind: bridge.KindWeb, Platform: "web"})
	b := bridge.New(tr, bridge.Options{})
	if b.Supports("VKWebAppClose") {
		t.Fatal("VKWebAppClose is mobile-only")
	}
	if b.IsWebView() {
		t.Fatal("web transport is not a webview")
	}
}

func TestIsWebView(t *testing.T) {
	b, _ := newBridge(t)
	if !b.IsWebView() {
		t.Fatal("native transport should report webview")
	}
}

func TestAbandonedCallStillSettles(t *testing.T) {
	b, tr := newBridge(t)
	call := b.SendAsync(context.Background(), "VKWebAppGetUserInfo", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := call.Result(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}

	// The entry stays resident until the event arrives.
	if n := b.PendingCount(); n != 1 {
		t.Fatalf("expected 1 pending got %d", n)
	}
	tr.Emit(wire.Envelope{Type: "VKWebAppGetUserInfoResult", Data: json.RawMessage(`{"request_id":1}`)})
	if n := b.PendingCount(); n != 0 {
		t.Fatalf("expected 0 pending got %d", n)
	}
	if _, err := await(t, call); err != nil {
		t.Fatalf("late result: %v", err)
	}
}
