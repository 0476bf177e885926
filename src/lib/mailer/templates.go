package mailer

import (
	"fmt"
	"gawlo/src/types"
	"time"
)

// The platform's transactional emails, French like the rest of the product.

func OTPMail(to string, otp string) *Mail {
	return &Mail{
		To:      to,
		Subject: "Connexion à votre compte Gawlo en tant qu'organisateur",
		Body: fmt.Sprintf(`<p>Bonjour,</p>
<p>Votre code OTP est : <strong>%s</strong></p>
<p>Ce code est valable pendant 10 minutes.</p>`, otp),
	}
}

func ResetPasswordMail(to string, resetLink string) *Mail {
	return &Mail{
		To:      to,
		Subject: "Réinitialisation de mot de passe",
		Body: fmt.Sprintf(`<p>Bonjour,</p>
<p>Cliquez sur le lien ci-dessous pour réinitialiser votre mot de passe :</p>
<a href="%s">%s</a>`, resetLink, resetLink),
	}
}

func PurchaseConfirmationMail(to, userName, eventTitle, location string, startDate time.Time, ticketType string, quantity uint) *Mail {
	return &Mail{
		To:      to,
		Subject: "Confirmation d'achat de billets",
		Body: fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Merci d'avoir acheté des billets pour l'événement : <strong>%s</strong>.</p>
<p>Détails :</p>
<ul>
  <li><strong>Date :</strong> %s</li>
  <li><strong>Lieu :</strong> %s</li>
  <li><strong>Type de billet :</strong> %s</li>
  <li><strong>Quantité :</strong> %d</li>
</ul>
<p>Nous espérons que vous profiterez pleinement de l'événement !</p>`,
			userName, eventTitle, startDate.Format("02/01/2006"), location, ticketType, quantity),
	}
}

func RefundDecisionMail(to, userName, eventTitle string, status types.RefundStatus, quantity uint) *Mail {
	if status == types.REFUND_APPROVED {
		return &Mail{
			To:      to,
			Subject: "Votre demande de remboursement a été approuvée",
			Body: fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Votre demande de remboursement pour l'événement <strong>%s</strong> a été approuvée.</p>
<p>Quantité remboursée : %d billet(s).</p>`, userName, eventTitle, quantity),
		}
	}
	return &Mail{
		To:      to,
		Subject: "Votre demande de remboursement a été rejetée",
		Body: fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Votre demande de remboursement pour l'événement <strong>%s</strong> a été rejetée.</p>`, userName, eventTitle),
	}
}
