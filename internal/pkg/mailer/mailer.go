// Package mailer envia e-mails transacionais por SMTP com corpo HTML renderizado
// a partir de templates embutidos no binário.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Option("missingkey=zero").ParseFS(templateFS, "templates/*.html"))

// EncryptionMode define o tipo de criptografia da conexão SMTP.
type EncryptionMode string

const (
	EncNone     EncryptionMode = "NONE"
	EncStartTLS EncryptionMode = "STARTTLS"
	EncSSLTLS   EncryptionMode = "SSL/TLS"
)

// Config são os parâmetros de conexão SMTP.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromAddr   string
	FromName   string
	Encryption string
}

// Message é um e-mail pronto para renderização.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     interface{}
}

// SMTPMailer envia mensagens usando net/smtp.
type SMTPMailer struct {
	cfg  Config
	mode EncryptionMode
}

// NewSMTPMailer normaliza o modo de criptografia (padrão STARTTLS).
func NewSMTPMailer(cfg Config) *SMTPMailer {
	mode := EncryptionMode(strings.ToUpper(strings.TrimSpace(cfg.Encryption)))
	if mode != EncNone && mode != EncStartTLS && mode != EncSSLTLS {
		mode = EncStartTLS
	}
	return &SMTPMailer{cfg: cfg, mode: mode}
}

// SendRecoveryCode envia o código de recuperação de senha.
func (m *SMTPMailer) SendRecoveryCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.Send(ctx, Message{
		To:       to,
		Subject:  "Recupera tu contraseña - El Brasero",
		Template: "recovery.html",
		Data: map[string]interface{}{
			"Code":    code,
			"Minutes": int(ttl.Minutes()),
		},
	})
}

// Send renderiza o template e entrega a mensagem.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("email: destinatário ausente")
	}

	body, err := Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}
	raw, err := buildMIMEMessage(m.cfg.FromName, m.cfg.FromAddr, msg.To, msg.Subject, body)
	if err != nil {
		return err
	}

	client, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("email: auth: %w", err)
		}
	}
	if err := client.Mail(m.cfg.FromAddr); err != nil {
		return fmt.Errorf("email: MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("email: RCPT TO %s: %w", msg.To, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("email: DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("email: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("email: close data: %w", err)
	}
	return client.Quit()
}

// dial abre a conexão respeitando o deadline do contexto e o modo de criptografia.
func (m *SMTPMailer) dial(ctx context.Context) (*smtp.Client, error) {
	d := net.Dialer{Timeout: 15 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			d.Timeout = remaining
		}
	}
	address := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	tlsCfg := &tls.Config{ServerName: m.cfg.Host}

	var conn net.Conn
	var err error
	if m.mode == EncSSLTLS {
		conn, err = tls.DialWithDialer(&d, "tcp", address, tlsCfg)
	} else {
		conn, err = d.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return nil, fmt.Errorf("email: dial %s: %w", address, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("email: new client: %w", err)
	}

	if m.mode == EncStartTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsCfg); err != nil {
				client.Close()
				return nil, fmt.Errorf("email: starttls: %w", err)
			}
		}
	}
	return client, nil
}

// Render executa um template embutido.
func Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("template: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// buildMIMEMessage monta um e-mail HTML UTF-8 em quoted-printable.
func buildMIMEMessage(fromName, fromAddr, to, subject, htmlBody string) ([]byte, error) {
	from := fromAddr
	if strings.TrimSpace(fromName) != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", fromName), fromAddr)
	}

	var msg bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("UTF-8", subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
		{"Content-Transfer-Encoding", "quoted-printable"},
	}
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&msg)
	if _, err := qp.Write([]byte(htmlBody)); err != nil {
		return nil, fmt.Errorf("email: encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("email: encode body: %w", err)
	}
	return msg.Bytes(), nil
}
