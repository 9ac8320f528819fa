package chengyu

import (
	"strings"
	"testing"
)

func TestHandle_MeaningQuery(t *testing.T) {
	reply, ok := Handle("?一帆风顺")
	if !ok {
		t.Fatal("known idiom must answer")
	}
	if !strings.HasPrefix(reply, "一帆风顺：") {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandle_FullWidthQuestionMark(t *testing.T) {
	if _, ok := Handle("？天天向上"); !ok {
		t.Error("full-width question mark must trigger the lookup")
	}
}

func TestHandle_Chain(t *testing.T) {
	next, ok := Handle("#一帆风顺")
	if !ok {
		t.Fatal("chain from a known idiom must answer")
	}
	if !strings.HasPrefix(next, "顺") {
		t.Errorf("chain reply %q does not start with 顺", next)
	}
}

func TestHandle_UnknownIdiom(t *testing.T) {
	if _, ok := Handle("#不是成语啊"); ok {
		t.Error("unknown word must not answer")
	}
}

func TestHandle_NoTriggerPrefix(t *testing.T) {
	if _, ok := Handle("一帆风顺"); ok {
		t.Error("messages without # or ? prefix are not queries")
	}
}

func TestHandle_ChainIsDeterministic(t *testing.T) {
	first, _ := Handle("#一帆风顺")
	for i := 0; i < 5; i++ {
		again, _ := Handle("#一帆风顺")
		if again != first {
			t.Fatalf("chain answer changed: %q vs %q", first, again)
		}
	}
}
