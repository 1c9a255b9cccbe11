package errmech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcwell-db/arcql/schema"
)

func TestTranslateSchemaFreeCodes(t *testing.T) {
	cases := []struct {
		code      string
		wantKind  Kind
		retryable bool
	}{
		{"40001", KindTransactionSerialization, true},
		{"40P01", KindTransactionDeadlock, true},
		{"22003", KindNumericOutOfRange, false},
		{"3D000", KindUnknownDatabase, false},
		{"42P04", KindDuplicateDatabase, false},
		{"21000", KindCardinalityViolation, false},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := Translate(&ErrorDetails{Code: tc.code, Message: "boom"}, nil)
			de, ok := err.(*DomainError)
			require.True(t, ok, "expected *DomainError, got %T", err)
			assert.Equal(t, tc.wantKind, de.Kind)
			assert.Equal(t, tc.retryable, de.Retryable)
			assert.Equal(t, tc.retryable, IsRetryable(err))
		})
	}
}

func TestTranslateUnknownCodePassesThrough(t *testing.T) {
	err := Translate(&ErrorDetails{Code: "99999", Message: "mystery"}, nil)
	de, ok := err.(*DomainError)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, de.Kind)
	assert.Equal(t, "mystery", de.Message)
	assert.False(t, IsRetryable(err))
}

func TestTranslateMissingRequiredResolvesPointerName(t *testing.T) {
	sch := schema.NewSchema()
	userName := schema.NewName("User")
	user := schema.ObjectType{
		Base: schema.NewBase(schema.NewID(), 1, userName, nil, []schema.Name{userName}, nil),
	}
	sch = sch.WithObject(user)

	email := schema.Pointer{
		Base:   schema.NewBase(schema.NewID(), 2, schema.NewName("email"), nil, nil, nil),
		Source: userName,
		Target: schema.NewQualName("std", "str"),
		Cardinality: schema.Cardinality{
			Upper: schema.UpperOne,
			Lower: schema.LowerRequired,
		},
	}
	sch = sch.WithObject(email)

	err := Translate(&ErrorDetails{
		Code:      "23502",
		TableName: "User",
		ColumnName: "email",
	}, sch)

	de, ok := err.(*DomainError)
	require.True(t, ok)
	assert.Equal(t, KindMissingRequired, de.Kind)
	assert.Contains(t, de.Message, "property 'email'")
	assert.Contains(t, de.Message, "default::User")
}

func TestClassifyConstraint(t *testing.T) {
	assert.Equal(t, "link", classifyConstraint("useremail_pkey"))
	assert.Equal(t, "cardinality", classifyConstraint("User_friends_cardinality_idx"))
	assert.Equal(t, "link_target", classifyConstraint("User_friends_target_fkey"))
	assert.Equal(t, "", classifyConstraint("not_a_known_pattern"))
}
