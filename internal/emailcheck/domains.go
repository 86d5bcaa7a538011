package emailcheck

import "regexp"

// allowedDomains are the consumer mail providers accepted for sign-in.
var allowedDomains = []string{
	// Google
	"gmail.com",

	// Microsoft
	"outlook.com",
	"hotmail.com",
	"live.com",

	// Apple
	"icloud.com",
	"me.com",
	"mac.com",

	// Yahoo
	"yahoo.com",
	"yahoo.co.uk",
	"yahoo.ca",
	"yahoo.com.au",

	"aol.com",
}

// disposableDomains are known temporary or throwaway inbox services.
var disposableDomains = []string{
	"10minutemail.com", "10minutemail.org", "10minutemail.net",
	"tempmail.org", "temp-mail.org",
	"guerrillamail.com", "guerrillamail.de", "guerrillamail.net", "guerrillamail.org",
	"mailinator.com", "yopmail.com", "throwaway.email", "maildrop.cc", "mohmal.com",
	"sharklasers.com", "grr.la", "guerrillamailblock.com", "pokemail.net", "spam4.me",
	"bccto.me", "chacuo.net", "dispostable.com", "emailondeck.com", "fakeinbox.com",
	"hide.biz.st", "mytrashmail.com", "no-spam.ws", "nowmymail.com", "sogetthis.com",
	"spambog.com", "spambog.de", "spambog.ru", "spamgourmet.com", "spamhole.com",
	"spamify.com", "spammotel.com", "spamthis.co.uk", "tempinbox.com", "tmailinator.com",
	"trashmail.at", "trashmail.com", "trashmail.de", "trashmail.me", "trashmail.net",
	"trashmail.org", "wegwerfmail.de", "wegwerfmail.net", "wegwerfmail.org",
	"zehnminuten.de", "zetmail.com", "0-mail.com", "0815.ru", "0clickemail.com",
	"0wnd.net", "0wnd.org", "10mail.org", "20email.eu", "2prong.com", "30minutemail.com",
	"3d-painting.com", "4warding.com", "4warding.net", "4warding.org", "9ox.net",
	"tempemail.com", "tempemailaddress.com", "tempr.email", "tempmail.email",
	"tempmail.plus", "tempmail24.com", "temporary-email.net", "temporaryemail.us",
	"temporarymail.com", "disposable.email", "disposableemailaddresses.com",
	"disposablemail.com", "fakemailgenerator.com", "fastmail.fm", "getnada.com",
	"incognitomail.org", "instant-email.org", "jetable.org", "mailcatch.com",
	"maildrop.info", "maildx.com", "mailforspam.com", "mailnesia.com", "mailsac.com",
	"mailtemp.info", "minuteinbox.com", "nada.email", "pookmail.com", "quickinbox.com",
	"receivesmsonline.net", "spambox.us", "spamheroes.com", "spaml.de", "spammask.com",
	"super-sam.com", "superrito.com", "tafmail.com", "tempmailaddress.com", "tempsky.com",
	"thanksnospam.info", "throwawayemailaddresses.com", "tmail.ws", "tmpmail.net",
	"tmpmail.org", "trashinbox.com", "trash-amil.com", "trbvm.com", "tryalert.com",
	"tvchd.com", "twinmail.de", "u14269.ml", "upliftnow.com", "veryrealemail.com",
	"vpn.st", "walala.org", "whyspam.me", "willselfdestruct.com", "xemaps.com",
	"xents.com", "yep.it", "yomail.info", "z1p.biz",
}

// suspiciousPatterns are evaluated in order after the set lookups.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)temp`),
	regexp.MustCompile(`(?i)fake`),
	regexp.MustCompile(`(?i)disposable`),
	regexp.MustCompile(`(?i)trash`),
	regexp.MustCompile(`(?i)throw`),
	regexp.MustCompile(`(?i)spam`),
	regexp.MustCompile(`(?i)guerrilla`),
	regexp.MustCompile(`(?i)mailinator`),
	regexp.MustCompile(`(?i)yopmail`),
	regexp.MustCompile(`(?i)10min`),
	regexp.MustCompile(`(?i)\d{2,}min`),
}

// providerNames maps domains to the label shown next to an address.
var providerNames = map[string]string{
	"gmail.com":      "Gmail",
	"outlook.com":    "Microsoft",
	"hotmail.com":    "Microsoft",
	"live.com":       "Microsoft",
	"msn.com":        "Microsoft",
	"icloud.com":     "Apple",
	"me.com":         "Apple",
	"mac.com":        "Apple",
	"apple.com":      "Apple",
	"yahoo.com":      "Yahoo",
	"aol.com":        "AOL",
	"protonmail.com": "ProtonMail",
	"tutanota.com":   "Tutanota",
}
