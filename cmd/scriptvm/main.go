// Command scriptvm executes a single script against the stack-based
// interpreter in package vm and reports whether it halted or faulted.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gerzhan-chain/scriptvm/vm"
)

func main() {
	var (
		scriptHex  = flag.String("script", "", "hex-encoded script to execute")
		scriptFile = flag.String("script-file", "", "path to a file containing a hex-encoded script")
		scriptsDir = flag.String("scripts-dir", "", "directory of <hash-hex>.bin files to serve APPCALL lookups")
		pushOnly   = flag.Bool("push-only", false, "restrict the script to pure pusher opcodes")
		traceDir   = flag.String("trace-dir", "", "directory to write rotated execution trace logs into")
		message    = flag.String("message", "", "hex-encoded message bytes CHECKSIG/CHECKMULTISIG verify against")
	)
	flag.Parse()

	script, err := loadScript(*scriptHex, *scriptFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var table vm.ScriptTable
	if *scriptsDir != "" {
		t, err := loadScriptTable(*scriptsDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		table = t
	}

	msgBytes, err := hex.DecodeString(*message)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -message hex:", err)
		os.Exit(2)
	}

	interp := vm.NewInterpreter(
		vm.StaticSignable{Message: msgBytes},
		vm.StandardCrypto{},
		table,
		nil,
	)

	if *traceDir != "" {
		logger, err := vm.NewRotatingLogger(*traceDir, logrus.TraceLevel)
		if err != nil {
			fmt.Fprintln(os.Stderr, "trace log setup failed:", err)
			os.Exit(2)
		}
		interp.SetLogger(logger)
	}

	if interp.ExecuteScript(script, *pushOnly) {
		fmt.Println("HALT")
		os.Exit(0)
	}
	fmt.Println("FAULT")
	os.Exit(1)
}

func loadScript(scriptHex, scriptFile string) ([]byte, error) {
	if scriptFile != "" {
		raw, err := ioutil.ReadFile(scriptFile)
		if err != nil {
			return nil, fmt.Errorf("reading script file: %w", err)
		}
		scriptHex = string(raw)
	}
	script, err := hex.DecodeString(trimHex(scriptHex))
	if err != nil {
		return nil, fmt.Errorf("decoding script hex: %w", err)
	}
	return script, nil
}

func trimHex(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// loadScriptTable builds a vm.MapScriptTable from a directory of
// <hash-hex>.bin files, each file's content being the raw callee bytecode
// served for APPCALL under its own Hash160.
func loadScriptTable(dir string) (*vm.MapScriptTable, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scripts dir: %w", err)
	}
	table := vm.NewMapScriptTable()
	crypto := vm.StandardCrypto{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := dir + "/" + entry.Name()
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		hash := crypto.Hash160(data)
		table.Put(hash, data)
	}
	return table, nil
}
