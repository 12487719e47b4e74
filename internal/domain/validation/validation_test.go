package validation

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNameAndDescription(t *testing.T) {
	Convey("Given the length rules", t, func() {
		Convey("Names need three characters after trimming", func() {
			So(IsValidName("Ana"), ShouldBeTrue)
			So(IsValidName("  Al  "), ShouldBeFalse)
			So(IsValidName(""), ShouldBeFalse)
		})

		Convey("Accented characters count once", func() {
			So(IsValidName("Léo"), ShouldBeTrue)
			So(IsValidDescription("açaí"), ShouldBeFalse)
		})

		Convey("Descriptions need five characters after trimming", func() {
			So(IsValidDescription("Robôs"), ShouldBeTrue)
			So(IsValidDescription(" abcd "), ShouldBeFalse)
		})
	})
}

func TestIsValidEmail(t *testing.T) {
	Convey("Given candidate emails", t, func() {
		So(IsValidEmail("a@b.co"), ShouldBeTrue)
		So(IsValidEmail("  maria@escola.edu.br "), ShouldBeTrue)
		So(IsValidEmail("a@b"), ShouldBeFalse)
		So(IsValidEmail("  "), ShouldBeFalse)
		So(IsValidEmail("a b@c.d"), ShouldBeFalse)
		So(IsValidEmail("@b.co"), ShouldBeFalse)
	})
}

func TestIsValidCPF(t *testing.T) {
	Convey("Given CPF strings", t, func() {
		Convey("A correct checksum is accepted", func() {
			So(IsValidCPF("11144477735"), ShouldBeTrue)
		})

		Convey("Punctuation is ignored", func() {
			So(IsValidCPF("111.444.777-35"), ShouldBeTrue)
		})

		Convey("Repeated digits are rejected", func() {
			So(IsValidCPF("11111111111"), ShouldBeFalse)
			So(IsValidCPF("000.000.000-00"), ShouldBeFalse)
		})

		Convey("Wrong lengths are rejected", func() {
			So(IsValidCPF("123"), ShouldBeFalse)
			So(IsValidCPF("111444777350"), ShouldBeFalse)
			So(IsValidCPF(""), ShouldBeFalse)
		})

		Convey("A wrong check digit is rejected", func() {
			So(IsValidCPF("11144477736"), ShouldBeFalse)
			So(IsValidCPF("11144477725"), ShouldBeFalse)
		})
	})
}

func TestDigitsOnly(t *testing.T) {
	Convey("DigitsOnly drops everything but 0-9", t, func() {
		So(DigitsOnly("111.444.777-35"), ShouldEqual, "11144477735")
		So(DigitsOnly("abc"), ShouldEqual, "")
	})
}

func TestErrors(t *testing.T) {
	Convey("Given a collector", t, func() {
		var errs Errors

		Convey("No failures means no error", func() {
			errs.Check(true, "nome", "Nome muito curto")
			So(errs.Err(), ShouldBeNil)
		})

		Convey("Failures are reported per field", func() {
			errs.Check(false, "nome", "Nome muito curto")
			errs.Check(false, "cpf", "CPF inválido (11 dígitos)")

			err := errs.Err()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrInvalid), ShouldBeTrue)
			So(errs.Has("cpf"), ShouldBeTrue)
			So(errs.Has("email"), ShouldBeFalse)
			So(err.Error(), ShouldContainSubstring, "nome: Nome muito curto")

			var fe Errors
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe, ShouldHaveLength, 2)
		})
	})
}
