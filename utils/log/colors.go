package log

import (
	"bytes"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

type color struct {
	*zapcore.EncoderConfig
	zapcore.Encoder
}

// NewColor wraps the stock ConsoleEncoder so field encoding does not have
// to be reimplemented.
func NewColor(cfg zapcore.EncoderConfig) (enc zapcore.Encoder) {
	return color{
		EncoderConfig: &cfg,
		Encoder:       zapcore.NewConsoleEncoder(cfg),
	}
}

// EncodeEntry undoes the escaping the console encoder applies to ANSI
// sequences embedded in field values, turning the literal \u001b text back
// into the escape byte so colored strings render colored.
func (c color) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (buf *buffer.Buffer, err error) {
	buff, err := c.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}

	unescaped := bytes.ReplaceAll(buff.Bytes(), []byte(`\u001b`), []byte("\u001b"))
	buff.Reset()
	_, _ = buff.Write(unescaped)
	return buff, nil
}

func (c color) Clone() zapcore.Encoder {
	return color{
		EncoderConfig: c.EncoderConfig,
		Encoder:       c.Encoder.Clone(),
	}
}
