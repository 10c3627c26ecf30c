package strategy

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// cue is a feature of the scammer's latest message that selects which canned
// replies are eligible.
type cue string

const (
	cueOTP      cue = "otp"
	cuePayment  cue = "payment"
	cueLink     cue = "link"
	cueEmail    cue = "email"
	cueBlock    cue = "block"
	cueIdentity cue = "identity"
	cueGeneric  cue = "generic"
)

// canned is one reply option in both language registers. Placeholders {bank}
// and {name} are substituted with tokens mirrored from the scammer's message.
type canned struct {
	en string
	hi string
}

// Synthesizer produces deterministic-input offline replies: no model call,
// no I/O, cannot fail. Selection among eligible options is randomized but
// excludes the session's most recently used reply id, so the same reply is
// never produced twice in direct succession (unless only one option is
// eligible).
type Synthesizer struct {
	pick func(n int) int
}

// SynthesizerOptions configures the Synthesizer.
type SynthesizerOptions struct {
	// Pick chooses an index in [0,n). Defaults to math/rand/v2; tests inject
	// a deterministic picker.
	Pick func(n int) int
}

// NewSynthesizer creates a Synthesizer with the given options.
func NewSynthesizer(optFns ...func(o *SynthesizerOptions)) *Synthesizer {
	opts := SynthesizerOptions{Pick: rand.IntN}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Synthesizer{pick: opts.Pick}
}

var honorificPattern = regexp.MustCompile(`(?i)(?:mr\.?|mrs\.?|this is|i am|my name is)\s+([a-zA-Z]+)`)

var bankNames = []string{"sbi", "pnb", "hdfc", "icici", "axis", "kotak", "bob", "rbi"}

// hinglishCues are romanized-Hindi words that flag the Hinglish register even
// when the metadata says English.
var hinglishCues = []string{"karo", "nahi", "hai", "bhaiya", "kya", "aap", "karein", "batao", "bhejo"}

// Synthesize returns an in-character reply and its stable option id for the
// strategy, derived purely from the turn context. The reply mirrors tokens
// (bank names, honorifics) from the scammer's message where available.
func (s *Synthesizer) Synthesize(tc TurnContext, strat Strategy) (reply, id string) {
	msg := strings.ToLower(tc.Turn.Message.Text)
	register := detectRegister(tc)
	bank := mirroredBank(msg)
	name := mirroredName(tc.Turn.Message.Text)

	options := collectOptions(strat.Name, detectCues(msg), register)

	// Exclude the most recently used reply id for this session. A repeat is
	// only possible when a single option is eligible.
	if len(options) > 1 && tc.LastReplyID != "" {
		filtered := options[:0:0]
		for _, o := range options {
			if o.id != tc.LastReplyID {
				filtered = append(filtered, o)
			}
		}
		if len(filtered) > 0 {
			options = filtered
		}
	}

	chosen := options[s.pick(len(options))]
	text := strings.ReplaceAll(chosen.text, "{bank}", bank)
	text = strings.ReplaceAll(text, "{name}", name)
	return text, chosen.id
}

func detectRegister(tc TurnContext) string {
	lang := strings.ToLower(tc.Language)
	if strings.Contains(lang, "hindi") || strings.Contains(lang, "hinglish") {
		return "hi"
	}
	msg := strings.ToLower(tc.Turn.Message.Text)
	for _, w := range hinglishCues {
		if strings.Contains(msg, " "+w+" ") || strings.HasSuffix(msg, " "+w) {
			return "hi"
		}
	}
	return "en"
}

func detectCues(msg string) []cue {
	var cues []cue
	add := func(c cue, words ...string) {
		for _, w := range words {
			if strings.Contains(msg, w) {
				cues = append(cues, c)
				return
			}
		}
	}
	add(cueOTP, "otp", "pin", "cvv", "code", "password")
	add(cuePayment, "upi", "transfer", "payment", "paytm", "phonepe", "gpay", "send")
	add(cueLink, "link", "url", "website", "click", "http")
	add(cueEmail, "email", "mail")
	add(cueBlock, "block", "suspend", "urgent", "expire", "arrest")
	add(cueIdentity, "officer", "employee", "security", "department")
	if len(cues) == 0 {
		cues = append(cues, cueGeneric)
	}
	return cues
}

func mirroredBank(msg string) string {
	for _, b := range bankNames {
		if strings.Contains(msg, b) {
			return strings.ToUpper(b)
		}
	}
	return "SBI"
}

func mirroredName(text string) string {
	if m := honorificPattern.FindStringSubmatch(text); m != nil {
		n := strings.ToLower(m[1])
		return strings.ToUpper(n[:1]) + n[1:]
	}
	return "sir"
}

type option struct {
	id   string
	text string
}

// collectOptions flattens the persona's reply bank for the matched cues into
// id-tagged options in the requested register.
func collectOptions(persona string, cues []cue, register string) []option {
	bank, ok := replyBank[persona]
	if !ok {
		bank = replyBank["confused_uncle"]
	}
	var out []option
	for _, c := range cues {
		for i, cr := range bank[c] {
			text := cr.en
			if register == "hi" && cr.hi != "" {
				text = cr.hi
			}
			out = append(out, option{
				id:   fmt.Sprintf("%s.%s.%s.%d", persona, c, register, i),
				text: text,
			})
		}
	}
	if len(out) == 0 {
		for i, cr := range bank[cueGeneric] {
			text := cr.en
			if register == "hi" && cr.hi != "" {
				text = cr.hi
			}
			out = append(out, option{
				id:   fmt.Sprintf("%s.%s.%s.%d", persona, cueGeneric, register, i),
				text: text,
			})
		}
	}
	return out
}

// replyBank holds the canned replies per persona and cue. Texts mirror the
// production banks: each one plays into the scammer's narrative while asking
// for a detail the system still wants.
var replyBank = map[string]map[cue][]canned{
	"confused_uncle": {
		cueOTP: {
			{
				en: "OTP? Yes, I got a message... 4... 7... wait, my screen went dark. Can you give me your phone number? I will call you and tell the OTP.",
				hi: "OTP? Arre haan aaya tha ek message... 4... 7... wait, screen dark ho gayi. Aap apna phone number do, main call karke batata hun OTP.",
			},
			{
				en: "Sir, I got the OTP message but there are many numbers in it. Can you give me your direct number? I will call and tell you.",
				hi: "Sir OTP wala message aa gaya lekin bahut saare numbers hai usme. Aap apna direct number do na, main call karke bata dunga.",
			},
		},
		cuePayment: {
			{
				en: "Sir, I have two accounts in {bank} — savings and pension. Which account number are you referring to? Can you tell me the last 4 digits?",
				hi: "Arre sir, {bank} ka toh mera 2 account hai — savings aur pension wala. Konsa account number bol rahe ho? Last 4 digit batao na apni side se?",
			},
			{
				en: "I have 3 UPI IDs sir, which one do you need? Or give me yours, I will note it down first.",
				hi: "Mere toh 3 UPI IDs hai sir, konsa chahiye? Ya apna UPI ID do, main pehle likh leta hun.",
			},
		},
		cueLink: {
			{
				en: "I clicked the link but it shows an error — 'page not found'. Can you send the full link again? Or give me your email ID?",
				hi: "Link pe click kiya lekin error aa raha hai — 'page not found' likh raha hai. Ek baar phir se bhejo na pura link? Ya apna email do.",
			},
			{
				en: "Sir, the link is not opening, there is some problem with my phone. Can you give me your direct number? I will try from my son's phone.",
				hi: "Sir link khul nahi raha, mera phone me kuch problem hai. Aap apna direct number de sakte ho? Main bete ke phone se try karta hun.",
			},
		},
		cueEmail: {
			{
				en: "Sir, can you spell out the email address one more time? I want to make sure I type it correctly.",
				hi: "Sir email address ek baar phir se bata do? Main sahi se likhna chahta hun.",
			},
		},
		cueBlock: {
			{
				en: "{name}, I am very worried! But which account will be blocked? I have accounts in both SBI and PNB. Can you tell me your employee ID?",
				hi: "{name}, mujhe bahut tension ho rahi hai! Lekin konsa account block hoga? Mera toh SBI, PNB dono me hai. Aap apna employee ID bata do, main note kar leta hun.",
			},
		},
		cueIdentity: {
			{
				en: "{name}, I noted your ID. But the app is not opening on my phone. Can you give me your direct number? I will call you.",
				hi: "{name}, aapka ID note kar liya. Lekin mera app nahi khul raha. Aap apna direct phone number do na, main call karta hun.",
			},
		},
		cueGeneric: {
			{
				en: "Sir I didn't understand, can you explain in more detail? My phone is running very slow. Give me your contact number, I will call you.",
				hi: "Sir samajh nahi aaya, thoda aur detail me batao na? Mera phone bhi bahut slow chal raha hai. Aapka contact number do, main call karke baat karta hun.",
			},
			{
				en: "Wait sir, I need to understand first. Which bank are you calling from? Please tell me your name and ID number, I will write it down.",
				hi: "Arre sir ek minute, mujhe pehle samajhna padega. Aap konsi bank se bol rahe ho? Apna naam aur ID number bata do, main diary me likh leta hun.",
			},
		},
	},
	"eager_victim": {
		cueOTP: {
			{
				en: "Sir yes, I got the OTP! But when I send it, the app says 'enter officer phone number for verification'. What is your number sir?",
				hi: "Sir haan OTP aaya hai! Lekin jab bhej raha hun toh app bol raha hai 'enter officer phone number for verification'. Aapka number kya hai sir?",
			},
			{
				en: "To send the OTP I have to fill a form in the app — it asks for the officer's email ID. Please tell me sir?",
				hi: "OTP bhejne ke liye app me ek form fill karna pad raha hai — usme officer ka email ID maang raha hai. Please batao na sir?",
			},
		},
		cuePayment: {
			{
				en: "Sir I am ready to transfer via UPI! But the app is asking for 'beneficiary UPI ID' to verify. What is your UPI? I will enter it.",
				hi: "Sir main UPI se transfer karne ko ready hun! Lekin app me 'beneficiary UPI ID' maang raha hai verify karne ke liye. Aapka UPI kya hai?",
			},
			{
				en: "Yes sir, {bank} account! For the transfer the app is asking your beneficiary account number for verification. Please share it.",
				hi: "Haan haan sir, {bank} account! Lekin sir transfer ke liye app aapka beneficiary account number maang raha hai — verification ke liye. Please share karo na?",
			},
		},
		cueLink: {
			{
				en: "Sir I clicked the link! But the page says 'enter your reference ID'. Did you give any reference number? Or should I enter your employee ID?",
				hi: "Sir link click kiya! Lekin woh page pe 'enter your reference ID' likh raha hai. Aapne koi reference number diya tha kya?",
			},
			{
				en: "I went to the link sir but it says expired. Please send a new link? Or give your direct UPI ID, I will try from there.",
				hi: "Link pe gaya sir lekin expired bol raha hai. Please new link bhejo? Ya direct apna UPI ID do, main wahan se try karta hun.",
			},
		},
		cueEmail: {
			{
				en: "Sir should I send it from my Gmail or Yahoo? And what is your email address exactly? I will type it carefully.",
				hi: "Sir Gmail se bhejun ya Yahoo se? Aur aapka email address exactly kya hai? Main dhyan se likhunga.",
			},
		},
		cueBlock: {
			{
				en: "Yes sir I am ready to fix it immediately! Just one problem — the app has a form asking for your full name, employee ID and contact number. Please tell me quickly!",
				hi: "Haan sir main ready hun abhi theek karne ko! Bas ek problem hai — app me form aaya hai jisme aapka full name, employee ID, aur contact number fill karna hai. Batao na sir jaldi!",
			},
		},
		cueIdentity: {
			{
				en: "Sir I am noting everything down for my records — what is your full name and employee badge number?",
				hi: "Sir main sab note kar raha hun apne records ke liye — aapka full name aur employee badge number kya hai?",
			},
		},
		cueGeneric: {
			{
				en: "Yes sir I will definitely do it! But my phone is asking for an update, it will take time. Until then give me your direct number, I will call from my son's phone.",
				hi: "Sir definitely karunga! Lekin mera phone update maang raha hai, thoda time lagega. Tab tak aap apna direct number do na, main ladke ke phone se call karta hun.",
			},
			{
				en: "Sir I am ready, just tell me step by step. And what name should I save your number under? Give me the number also.",
				hi: "Sir main ready hun, bas step by step batao. Aur aapka number kis naam se save karun? Number bhi de do.",
			},
		},
	},
	"worried_citizen": {
		cueOTP: {
			{
				en: "Sir I will give the OTP but I am very scared — please give me your employee ID and official phone number, I will verify and send it immediately!",
				hi: "Sir main OTP de dunga lekin mujhe bahut darr lag raha hai — please apna employee ID aur official phone number do, main verify karke turant bhej dunga!",
			},
			{
				en: "Sir my hands are shaking! Before sending the OTP please tell me your full name and department? My son said always note down the officer's details!",
				hi: "Sir mera haath kaanp rahe hain! OTP bhejne se pehle please apna full name aur department batao? Mera beta bola hai hamesha note karo officer ki details!",
			},
		},
		cuePayment: {
			{
				en: "Sir I will pay whatever is needed, please don't let anything happen to my account! Which UPI ID should the money go to? Tell me slowly, I am writing.",
				hi: "Sir jo bhi dena hai main de dunga, bas mere account ko kuch mat hone do! Paisa konse UPI ID pe jayega? Dheere se batao, main likh raha hun.",
			},
		},
		cueLink: {
			{
				en: "Sir before clicking the link — my son told me to always take the officer's ID and direct phone number before clicking any link. Please sir, I want to feel safe!",
				hi: "Sir link pe click karne se pehle — mere bete ne bola hai kabhi bhi link pe click karne se pehle officer ka ID aur direct phone number le lo. Please sir!",
			},
			{
				en: "Sir I am scared to open the link! Can you send it from your official email? Only then I will believe it is real. Please sir help me!",
				hi: "Sir main link kholne se darr raha hun! Kya aap apna official email se bhej sakte ho? Tabhi mujhe yakin aayega ki real hai. Please sir meri help karo!",
			},
		},
		cueEmail: {
			{
				en: "Sir please send everything to me on official email with proof, my son will verify it. What is your email address? I am noting it down.",
				hi: "Sir please sab kuch official email pe bhejo proof ke saath, mera beta verify karega. Aapka email address kya hai? Main likh raha hun.",
			},
		},
		cueBlock: {
			{
				en: "{name}, please don't block my account! All my pension is in it! Give me your direct phone number sir, I will call and do everything right now!",
				hi: "{name}, please mera account block mat karo! Meri saari pension usme hai! Aapka direct phone number do na sir, main abhi call karke sab kar dunga!",
			},
			{
				en: "Sir please please don't block! I am very scared! Send me your official email with proof, my son will verify and we will do it immediately!",
				hi: "Sir please please block mat karo! Mujhe bahut darr lag raha hai! Aap apna official email bhejo proof ke saath, mera beta verify karega aur turant sab kar denge!",
			},
		},
		cueIdentity: {
			{
				en: "{name}, I noted your ID. But I am still scared. Can you call me from your official number? Only then I will proceed!",
				hi: "{name}, aapka ID note kar liya. Lekin mujhe abhi bhi darr lag raha hai. Aap apne official number se call kar sakte ho? Tabhi main aage badhunga!",
			},
		},
		cueGeneric: {
			{
				en: "Sir I am very scared! What is happening? Please explain in detail and give your official ID and phone number — my son says always verify first!",
				hi: "Sir mujhe bahut darr lag raha hai! Kya ho raha hai? Please thoda detail me batao aur apna official ID aur phone number do — mera beta bol raha hai hamesha verify karo pehle!",
			},
			{
				en: "Oh no sir! I am very worried! Please send your full name, employee ID and official email first. My son refuses to let me do anything without verification!",
				hi: "Oh no sir! Main bahut pareshaan hun! Please pehle apna full name, employee ID, aur official email bhejo. Mera beta bina verify kiye kuch bhi karne se mana karta hai!",
			},
		},
	},
}
