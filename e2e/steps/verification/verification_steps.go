package verification

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetApplicationID() string
	SetDocumentID(id string)
	GetDocumentID() string
	SetReferenceID(id string)
	GetReferenceID() string
	SetAccountID(id string)
	GetAccountID() string
}

// RegisterSteps registers document, reference, bank-account and field
// verification step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	// Document review steps
	ctx.Step(`^I attach a "([^"]*)" document named "([^"]*)"$`, steps.attachDocument)
	ctx.Step(`^I save the document id$`, steps.saveDocumentID)
	ctx.Step(`^I approve the document$`, steps.approveDocument)
	ctx.Step(`^I unapprove the document$`, steps.unapproveDocument)
	ctx.Step(`^I reject the document with reason "([^"]*)"$`, steps.rejectDocument)

	// Reference verification steps
	ctx.Step(`^I add a reference named "([^"]*)" with phone "([^"]*)"$`, steps.addReference)
	ctx.Step(`^I save the reference id$`, steps.saveReferenceID)
	ctx.Step(`^I record the reference call as "([^"]*)"$`, steps.recordReferenceCall)

	// Bank account steps
	ctx.Step(`^I add a "([^"]*)" bank account numbered "([^"]*)"$`, steps.addBankAccount)
	ctx.Step(`^I save the bank account id$`, steps.saveAccountID)
	ctx.Step(`^I verify the bank account$`, steps.verifyBankAccount)
	ctx.Step(`^I unverify the bank account$`, steps.unverifyBankAccount)

	// Field verification steps
	ctx.Step(`^I verify the applicant field "([^"]*)"$`, steps.verifyApplicantField)
}

type verificationSteps struct {
	tc TestContext
}

func (s *verificationSteps) attachDocument(ctx context.Context, docType, fileName string) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/documents", map[string]string{
		"type":      docType,
		"file_name": fileName,
	})
}

func (s *verificationSteps) saveDocumentID(ctx context.Context) error {
	return saveID(s.tc, "document", s.tc.SetDocumentID)
}

func (s *verificationSteps) approveDocument(ctx context.Context) error {
	return s.tc.POST("/documents/"+s.tc.GetDocumentID()+"/approve", nil)
}

func (s *verificationSteps) unapproveDocument(ctx context.Context) error {
	return s.tc.POST("/documents/"+s.tc.GetDocumentID()+"/unapprove", nil)
}

func (s *verificationSteps) rejectDocument(ctx context.Context, reason string) error {
	return s.tc.POST("/documents/"+s.tc.GetDocumentID()+"/reject", map[string]string{
		"reason": reason,
	})
}

func (s *verificationSteps) addReference(ctx context.Context, name, phone string) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/references", map[string]string{
		"name":         name,
		"relationship": "neighbour",
		"phone":        phone,
	})
}

func (s *verificationSteps) saveReferenceID(ctx context.Context) error {
	return saveID(s.tc, "reference", s.tc.SetReferenceID)
}

func (s *verificationSteps) recordReferenceCall(ctx context.Context, result string) error {
	return s.tc.POST("/references/"+s.tc.GetReferenceID()+"/verify", map[string]string{
		"result": result,
		"notes":  "spoke to the contact on the phone",
	})
}

func (s *verificationSteps) addBankAccount(ctx context.Context, bankName, accountNumber string) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/bank-accounts", map[string]string{
		"bank_name":      bankName,
		"account_number": accountNumber,
		"holder_name":    "Naledi Khumalo",
	})
}

func (s *verificationSteps) saveAccountID(ctx context.Context) error {
	return saveID(s.tc, "bank account", s.tc.SetAccountID)
}

func (s *verificationSteps) verifyBankAccount(ctx context.Context) error {
	return s.tc.POST("/bank-accounts/"+s.tc.GetAccountID()+"/verify", nil)
}

func (s *verificationSteps) unverifyBankAccount(ctx context.Context) error {
	return s.tc.POST("/bank-accounts/"+s.tc.GetAccountID()+"/unverify", nil)
}

func (s *verificationSteps) verifyApplicantField(ctx context.Context, field string) error {
	return s.tc.POST("/applications/"+s.tc.GetApplicationID()+"/verifications", map[string]string{
		"field":  field,
		"action": "verify",
		"method": "document_check",
		"notes":  "checked against the uploaded identity document",
	})
}

// saveID pulls the id field out of the last creation response so later steps
// can address the entity by path.
func saveID(tc TestContext, entity string, set func(string)) error {
	value, err := tc.GetResponseField("id")
	if err != nil {
		return err
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return fmt.Errorf("response carried no %s id: %s", entity, tc.GetLastResponseBody())
	}
	set(id)
	return nil
}
