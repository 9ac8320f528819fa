package robot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wxbot/internal/config"
	"wxbot/internal/contacts"
	"wxbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentText struct {
	content  string
	receiver string
	atIDs    string
}

type sentImage struct {
	path     string
	receiver string
}

// fakeGateway records outbound operations and serves canned lookups.
type fakeGateway struct {
	selfID   string
	aliases  map[string]string // participant id -> in-group alias
	contacts []domain.Contact

	texts    []sentText
	images   []sentImage
	accepted []friendRequest
	sendErr  error
}

func (g *fakeGateway) SelfID() string { return g.selfID }

func (g *fakeGateway) SendText(_ context.Context, content, receiver, atIDs string) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.texts = append(g.texts, sentText{content: content, receiver: receiver, atIDs: atIDs})
	return nil
}

func (g *fakeGateway) SendImage(_ context.Context, path, receiver string) error {
	g.images = append(g.images, sentImage{path: path, receiver: receiver})
	return nil
}

func (g *fakeGateway) DownloadAttachment(_ context.Context, _, ref, destDir string) (string, error) {
	return filepath.Join(destDir, filepath.Base(ref)), nil
}

func (g *fakeGateway) AcceptFriendRequest(_ context.Context, encryptedUsername, ticket string, scene int) error {
	g.accepted = append(g.accepted, friendRequest{
		EncryptUsername: encryptedUsername,
		Ticket:          ticket,
		Scene:           scene,
	})
	return nil
}

func (g *fakeGateway) QueryContacts(context.Context) ([]domain.Contact, error) {
	return g.contacts, nil
}

func (g *fakeGateway) GroupAlias(_ context.Context, id, _ string) (string, error) {
	alias, ok := g.aliases[id]
	if !ok {
		return "", errors.New("no alias")
	}
	return alias, nil
}

// stubChat is a deterministic conversational backend.
type stubChat struct {
	answer   string
	err      error
	question string
	key      string
}

func (s *stubChat) Name() string { return "stub" }

func (s *stubChat) Answer(_ context.Context, question, key string) (string, error) {
	s.question = question
	s.key = key
	return s.answer, s.err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRobot(t *testing.T, gw *fakeGateway, chat domain.ChatProvider, configBody string) (*Robot, *config.Manager) {
	t.Helper()
	mgr, err := config.NewManager(writeConfig(t, configBody), testLogger())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	dir := contacts.NewDirectory(nil, testLogger())
	r := New(Config{
		Manager:  mgr,
		Gateway:  gw,
		Contacts: dir,
		Chat:     chat,
		Logger:   testLogger(),
	})
	return r, mgr
}

const baseConfig = `
groups:
  - room1@chatroom
groupExpiry:
  room1@chatroom: "20301231"
`

func TestUnmonitoredGroupDiscarded(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "other@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "兑换码",
	})

	if len(gw.texts) != 0 || len(gw.images) != 0 {
		t.Fatalf("expected no sends for unmonitored group, got %v %v", gw.texts, gw.images)
	}
}

func TestStaticTriggerInMonitoredGroup(t *testing.T) {
	gw := &fakeGateway{selfID: "self", aliases: map[string]string{"u1": "小明"}}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "兑换码",
	})

	if len(gw.texts) != 1 {
		t.Fatalf("expected one reply, got %d", len(gw.texts))
	}
	got := gw.texts[0]
	if got.receiver != "room1@chatroom" {
		t.Errorf("receiver = %q", got.receiver)
	}
	if !strings.HasPrefix(got.content, "@小明\n\n") {
		t.Errorf("reply not @-formatted: %q", got.content)
	}
	if got.atIDs != "u1" {
		t.Errorf("atIDs = %q", got.atIDs)
	}
}

func TestMentionGetsDeterrentWhenBackendDisabled(t *testing.T) {
	gw := &fakeGateway{selfID: "self", aliases: map[string]string{"u1": "小明"}}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "@小乖 在吗",
		MentionedIDs: []string{"self"},
	})

	if len(gw.texts) != 1 {
		t.Fatalf("expected one reply, got %d", len(gw.texts))
	}
	if !strings.Contains(gw.texts[0].content, deterrentReply) {
		t.Errorf("reply = %q, want deterrent", gw.texts[0].content)
	}
}

func TestMentionQueriesBackendWhenEnabled(t *testing.T) {
	gw := &fakeGateway{selfID: "self", aliases: map[string]string{"u1": "小明"}}
	chat := &stubChat{answer: "你好呀"}
	r, _ := newTestRobot(t, gw, chat, baseConfig+`
chitchat:
  enableBackend: true
`)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "@小乖 今天天气怎么样",
		MentionedIDs: []string{"self"},
	})

	if chat.question != "今天天气怎么样" {
		t.Errorf("backend question = %q, want mention stripped", chat.question)
	}
	if chat.key != "room1@chatroom" {
		t.Errorf("conversation key = %q, want group id", chat.key)
	}
	if len(gw.texts) != 1 || !strings.Contains(gw.texts[0].content, "你好呀") {
		t.Fatalf("expected backend answer relayed, got %v", gw.texts)
	}
}

func TestBackendFailureSendsNothing(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	chat := &stubChat{err: errors.New("upstream down")}
	r, _ := newTestRobot(t, gw, chat, baseConfig+`
chitchat:
  enableBackend: true
`)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "@小乖 hi",
		MentionedIDs: []string{"self"},
	})

	if len(gw.texts) != 0 {
		t.Fatalf("expected no reply after backend failure, got %v", gw.texts)
	}
}

func TestDirectChitchatSilentWhenBackendDisabled(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", SenderID: "u1", Type: domain.EventText, Content: "在吗",
	})

	if len(gw.texts) != 0 {
		t.Fatalf("expected silence for direct chat, got %v", gw.texts)
	}
}

func TestIdiomChainInGroup(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "#一帆风顺",
	})

	if len(gw.texts) != 1 {
		t.Fatalf("expected one idiom reply, got %d", len(gw.texts))
	}
	if !strings.HasPrefix(gw.texts[0].content, "顺") {
		t.Errorf("chain reply = %q, want next idiom starting with 顺", gw.texts[0].content)
	}
	if gw.texts[0].atIDs != "" {
		t.Errorf("idiom reply should not @ anyone, got %q", gw.texts[0].atIDs)
	}
}

func TestSelfReloadCommand(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, mgr := newTestRobot(t, gw, nil, baseConfig)

	updated := baseConfig + `
chitchat:
  enableBackend: true
`
	if err := os.WriteFile(mgr.Path(), []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", SenderID: "self", SelfSent: true,
		Type: domain.EventText, Content: "^更新$",
	})

	if !mgr.Current().Chitchat.EnableBackend {
		t.Error("reload command did not pick up new config")
	}
	if len(gw.texts) != 0 {
		t.Errorf("reload command should not reply, got %v", gw.texts)
	}
}

func TestReloadCommandIgnoredFromOthers(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, mgr := newTestRobot(t, gw, nil, baseConfig)

	updated := baseConfig + `
chitchat:
  enableBackend: true
`
	if err := os.WriteFile(mgr.Path(), []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", SenderID: "u1",
		Type: domain.EventText, Content: "^更新$",
	})

	if mgr.Current().Chitchat.EnableBackend {
		t.Error("reload must only be accepted from the bot's own account")
	}
}

func TestFriendRequestAccepted(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	content := `<msg fromusername="wxid_new" encryptusername="v3_abc" ticket="t123" scene="6" content="你好"/>`
	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", SenderID: "wxid_new",
		Type: domain.EventFriendRequest, Content: content,
	})

	if len(gw.accepted) != 1 {
		t.Fatalf("expected one accepted request, got %d", len(gw.accepted))
	}
	got := gw.accepted[0]
	if got.EncryptUsername != "v3_abc" || got.Ticket != "t123" || got.Scene != 6 {
		t.Errorf("accepted with %+v", got)
	}
}

func TestMalformedFriendRequestIgnored(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", SenderID: "wxid_new",
		Type: domain.EventFriendRequest, Content: `<msg encryptusername="" ticket=""/>`,
	})

	if len(gw.accepted) != 0 {
		t.Fatalf("expected malformed request dropped, got %v", gw.accepted)
	}
}

func TestNewFriendNoticeGreetsAndRecords(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", SenderID: "wxid_new",
		Type: domain.EventSystemNotice, Content: "你已添加了阿强，现在可以开始聊天了。",
	})

	if len(gw.texts) != 1 {
		t.Fatalf("expected one greeting, got %d", len(gw.texts))
	}
	want := "Hi 阿强，我自动通过了你的好友请求。"
	if gw.texts[0].content != want {
		t.Errorf("greeting = %q, want %q", gw.texts[0].content, want)
	}
	if gw.texts[0].receiver != "wxid_new" {
		t.Errorf("greeting receiver = %q", gw.texts[0].receiver)
	}
	if name := r.contacts.Name("wxid_new"); name != "阿强" {
		t.Errorf("contact name = %q, want recorded", name)
	}
}

func TestUnrelatedSystemNoticeIgnored(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", SenderID: "sys",
		Type: domain.EventSystemNotice, Content: "你撤回了一条消息",
	})

	if len(gw.texts) != 0 {
		t.Fatalf("expected no reply, got %v", gw.texts)
	}
}

func TestReplyTextAtEveryone(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	if err := r.ReplyText(context.Background(), "服务器今晚维护", "room1@chatroom", domain.AtEveryone); err != nil {
		t.Fatal(err)
	}
	if len(gw.texts) != 1 {
		t.Fatalf("expected one send, got %d", len(gw.texts))
	}
	if gw.texts[0].content != "@所有人\n\n服务器今晚维护" {
		t.Errorf("content = %q", gw.texts[0].content)
	}
	if gw.texts[0].atIDs != domain.AtEveryone {
		t.Errorf("atIDs = %q", gw.texts[0].atIDs)
	}
}

func TestReplyTextFallsBackToDirectoryName(t *testing.T) {
	gw := &fakeGateway{selfID: "self"} // no group aliases
	r, _ := newTestRobot(t, gw, nil, baseConfig)
	r.contacts.Upsert("u1", "小红")

	if err := r.ReplyText(context.Background(), "hello", "room1@chatroom", "u1"); err != nil {
		t.Fatal(err)
	}
	if got := gw.texts[0].content; got != "@小红\n\nhello" {
		t.Errorf("content = %q", got)
	}
}

func TestReplyTextMultipleMentions(t *testing.T) {
	gw := &fakeGateway{selfID: "self", aliases: map[string]string{"u1": "小明", "u2": "小红"}}
	r, _ := newTestRobot(t, gw, nil, baseConfig)

	if err := r.ReplyText(context.Background(), "开会了", "room1@chatroom", "u1", "u2"); err != nil {
		t.Fatal(err)
	}
	got := gw.texts[0]
	if got.content != "@小明 @小红\n\n开会了" {
		t.Errorf("content = %q", got.content)
	}
	if got.atIDs != "u1,u2" {
		t.Errorf("atIDs = %q", got.atIDs)
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, panickyChat{}, baseConfig+`
chitchat:
  enableBackend: true
`)

	// Must not propagate.
	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "@小乖 hi",
		MentionedIDs: []string{"self"},
	})
}

type panickyChat struct{}

func (panickyChat) Name() string { return "panicky" }
func (panickyChat) Answer(context.Context, string, string) (string, error) {
	panic("boom")
}

func TestExpiryReplyUsesConfiguredDate(t *testing.T) {
	expiry := time.Now().AddDate(1, 0, 0)
	cfgBody := fmt.Sprintf(`
groups:
  - room1@chatroom
groupExpiry:
  room1@chatroom: %q
`, expiry.Format("20060102"))

	gw := &fakeGateway{selfID: "self", aliases: map[string]string{"u1": "小明"}}
	r, _ := newTestRobot(t, gw, nil, cfgBody)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "到期时间",
	})

	if len(gw.texts) != 1 {
		t.Fatalf("expected one reply, got %d", len(gw.texts))
	}
	if !strings.Contains(gw.texts[0].content, expiry.Format("2006年01月02日")) {
		t.Errorf("reply = %q, want formatted expiry date", gw.texts[0].content)
	}
	if strings.Contains(gw.texts[0].content, "-") {
		t.Errorf("negative component in countdown: %q", gw.texts[0].content)
	}
}

func TestExpiryWithoutConfigGetsFallbackReply(t *testing.T) {
	gw := &fakeGateway{selfID: "self", aliases: map[string]string{"u1": "小明"}}
	r, _ := newTestRobot(t, gw, nil, `
groups:
  - room1@chatroom
`)

	r.ProcessEvent(context.Background(), &domain.InboundEvent{
		ID: "1", GroupID: "room1@chatroom", SenderID: "u1",
		Type: domain.EventText, Content: "到期时间",
	})

	if len(gw.texts) != 1 {
		t.Fatalf("expected one fallback reply, got %d", len(gw.texts))
	}
	if !strings.Contains(gw.texts[0].content, "还没有配置到期时间") {
		t.Errorf("reply = %q, want missing-config fallback", gw.texts[0].content)
	}
}

func TestStringSummary(t *testing.T) {
	gw := &fakeGateway{selfID: "self"}
	r, _ := newTestRobot(t, gw, &stubChat{}, baseConfig)

	want := fmt.Sprintf("robot(self=%s, provider=%s, contacts=%d)", "self", "stub", 0)
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
