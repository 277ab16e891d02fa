package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	appconfig "github.com/eumlog/consultation-engine/internal/config"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

func exportRow(name string) string {
	fields := make([]string, 30)
	for k, v := range map[int]string{
		0: "일반", 2: name, 3: "남자", 4: "900101", 6: "광주 북구", 8: "178",
		17: "93~96년생", 18: "160cm 이상", 24: "나이|키", 25: "동의합니다",
	} {
		fields[k] = v
	}
	return strings.Join(fields, "\t")
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{ExemptCohorts: []string{"돈냄"}, PromoCohortMarker: "이벤트", PaymentAccount: "이음은행 000-0000"}
}

func TestRunTextToStdout(t *testing.T) {
	var out bytes.Buffer
	export := exportRow("박준호") + "\n" + exportRow("최민석")
	err := run(testConfig(), "", "", "text", strings.NewReader(export), &out, logging.New("error"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	body := out.String()
	if !strings.Contains(body, "안녕하세요 박준호님!") || !strings.Contains(body, "안녕하세요 최민석님!") {
		t.Fatalf("expected both documents, got %s", body)
	}
	if !strings.Contains(body, "이음은행 000-0000") {
		t.Fatalf("expected configured payment account")
	}
}

func TestRunJSONToDirectory(t *testing.T) {
	dir := t.TempDir()
	err := run(testConfig(), "", dir, "json", strings.NewReader(exportRow("박준호")), &bytes.Buffer{}, logging.New("error"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "박준호_900101.json"))
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	var got interactiveScript
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Name != "박준호" || len(got.Directives) == 0 || got.Instruction == "" {
		t.Fatalf("unexpected script %#v", got)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	if err := run(testConfig(), "", "", "pdf", strings.NewReader(""), &bytes.Buffer{}, logging.New("error")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
