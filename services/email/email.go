package email

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rahul-cmtai/nexa-bknd/models"
	"gopkg.in/gomail.v2"
)

// Service sends transactional mail over SMTP. Checkout dispatches the order
// confirmation after commit and never lets a send failure reach the client.
type Service struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewFromEnv() *Service {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return &Service{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// SendOrderConfirmation mails the order summary to the buyer.
func (s *Service) SendOrderConfirmation(to string, order models.Order) error {
	if s.host == "" || s.from == "" {
		return fmt.Errorf("smtp configuration missing")
	}

	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "<li>%s × %d — ₹%.2f</li>", item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}

	body := fmt.Sprintf(`
		<h2>Thank you for your order!</h2>
		<p>Order <b>%s</b> has been placed successfully.</p>
		<ul>%s</ul>
		<p>Items: ₹%.2f<br>Shipping: ₹%.2f<br>Discount: -₹%.2f</p>
		<p><b>Total: ₹%.2f</b> (%s)</p>`,
		order.OrderRef, lines.String(),
		order.ItemsPrice, order.ShippingPrice, order.DiscountAmount,
		order.TotalPrice, order.PaymentMethod,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Order confirmation — %s", order.OrderRef))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	return d.DialAndSend(m)
}
