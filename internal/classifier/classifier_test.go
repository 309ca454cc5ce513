package classifier

import (
	"testing"

	"money-mate/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.MessageCategory
	}{
		{"security wins over transaction", "fraud alert: Rs.500 debited from account", models.MessageCategorySecurityAlert},
		{"never share", "Never share your card details with anyone", models.MessageCategorySecurityAlert},
		{"otp with digits", "your OTP is 482910", models.MessageCategoryOTP},
		{"verify without digits", "verify your identity", models.MessageCategoryOther},
		{"otp before transaction", "OTP 4821 for txn of Rs.999 on your HDFC card", models.MessageCategoryOTP},
		{"telecom usage", "90% of your daily 1.5GB data quota reached. Pack expires on 12-05", models.MessageCategoryTelecom},
		{"telecom validity", "Jio: your plan validity ends tomorrow", models.MessageCategoryTelecom},
		{"balance inquiry", "Balance enquiry: available balance in your a/c is Rs 5000", models.MessageCategoryBalanceInquiry},
		{"promotional", "Get 20% cashback on your next recharge. Click here", models.MessageCategoryPromotional},
		{"transaction", "Rs.1500 debited from a/c XX123 on UPI, ref 9988", models.MessageCategoryTransaction},
		{"credit in rupee symbol", "₹2,000.00 credited to your account by NEFT", models.MessageCategoryTransaction},
		{"bank inside a word", "Rs.500 debited via netbanking", models.MessageCategoryTransaction},
		{"bank in sender name", "HDFCBANK: Rs.250 paid to Amazon", models.MessageCategoryTransaction},
		{"plural context", "Rs.900 transferred between your accounts", models.MessageCategoryTransaction},
		{"missing context keyword", "Rs.500 debited", models.MessageCategoryOther},
		{"missing amount", "Amount debited from your account", models.MessageCategoryOther},
		{"plain text", "See you at 7?", models.MessageCategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Classify("rs.1500 debited from a/c xx123 on upi"), Classify("RS.1500 DEBITED FROM A/C XX123 ON UPI"))
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "INR 250 paid via UPI to Swiggy"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(text))
	}
}

func TestShortKeywordsNeedWordBoundaries(t *testing.T) {
	// "vi" and "data" must not fire inside longer words
	assert.NotEqual(t, models.MessageCategoryTelecom, Classify("Your visa application package is validated"))
}

func TestRulesOrder(t *testing.T) {
	assert.Equal(t, []string{"security alert", "otp", "telecom", "balance inquiry", "promotional", "transaction"}, Rules())
}
