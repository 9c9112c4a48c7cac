package cmd

import (
	"bytes"
	"testing"
)

func TestCheckCmd_RepairFlagDefault(t *testing.T) {
	repair, err := checkCmd.Flags().GetBool("repair")
	if err != nil {
		t.Fatalf("Failed to get repair flag: %v", err)
	}
	if repair {
		t.Error("Expected repair to default to false")
	}
}

func TestCheckCmd_CommandMetadata(t *testing.T) {
	if checkCmd.Use != "check" {
		t.Errorf("Expected Use to be 'check', got %s", checkCmd.Use)
	}

	if checkCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
}

func TestCheckCmd_UsageOutput(t *testing.T) {
	var buf bytes.Buffer
	checkCmd.SetOut(&buf)
	checkCmd.SetErr(&buf)

	err := checkCmd.Usage()
	if err != nil {
		t.Errorf("Usage() returned error: %v", err)
	}

	output := buf.String()
	if output == "" {
		t.Error("Expected usage output, got empty string")
	}

	if !bytes.Contains([]byte(output), []byte("--repair")) {
		t.Error("Expected usage to mention --repair")
	}
}

func TestCheckCmd_InheritsDBFlag(t *testing.T) {
	flag := checkCmd.InheritedFlags().Lookup("db")
	if flag == nil {
		t.Error("Expected check command to inherit --db flag from root")
	}
}
