package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/sqlsteps/logger"
)

var _ = Describe("Logger", func() {
	log := logger.NewLogger("test-service", "debug", true)
	log.SetJSONFormatter()

	capture := func(fn func()) map[string]interface{} {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		fn()
		var actual map[string]interface{}
		_ = json.Unmarshal(logOutput.Bytes(), &actual)
		return actual
	}

	It("Should have `test-service` as service name", func() {
		actual := capture(func() { log.Info("Testing") })
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		actual := capture(func() { log.Info("Testing") })
		Expect(actual["level"]).To(Equal("info"))
	})

	It("Should have warn as log level", func() {
		actual := capture(func() { log.Warn("Testing") })
		Expect(actual["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		actual := capture(func() { log.Error("Testing") })
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		actual := capture(func() { log.Info("Testing") })
		Expect(actual["msg"]).To(Equal("Testing"))
	})

	It("Should carry fields added with WithField", func() {
		actual := capture(func() { log.WithField("step", "import").Info("Testing") })
		Expect(actual["step"]).To(Equal("import"))
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should tee output to a log file", func() {
		fileName := filepath.Join(os.TempDir(), "sqlsteps-logger-test.log")
		_ = os.Remove(fileName)
		c, err := log.TeeToFile(fileName)
		Expect(err).To(BeNil())
		log.Info("written to file")
		Expect(c.Close()).To(Succeed())
		b, err := os.ReadFile(fileName)
		Expect(err).To(BeNil())
		Expect(string(b)).To(ContainSubstring("written to file"))
		_ = os.Remove(fileName)
	})

	It("Should send output back to stderr once the log file is closed", func() {
		dir, err := os.MkdirTemp("", "sqlsteps-logger-")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)
		fileName := filepath.Join(dir, "run.log")
		c, err := log.TeeToFile(fileName)
		Expect(err).To(BeNil())
		log.Info("before close")
		stderr, err := os.Create(filepath.Join(dir, "stderr"))
		Expect(err).To(BeNil())
		saved := os.Stderr
		os.Stderr = stderr
		defer func() {
			os.Stderr = saved
			log.SetOutput(os.Stderr)
		}()
		Expect(c.Close()).To(Succeed())
		log.Info("after close")
		Expect(stderr.Close()).To(Succeed())
		b, err := os.ReadFile(fileName)
		Expect(err).To(BeNil())
		Expect(string(b)).To(ContainSubstring("before close"))
		Expect(string(b)).NotTo(ContainSubstring("after close"))
		b, err = os.ReadFile(filepath.Join(dir, "stderr"))
		Expect(err).To(BeNil())
		Expect(string(b)).To(ContainSubstring("after close"))
	})
})
