package action

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/keys"
)

func roundTripBorsh(t *testing.T, a Action) Action {
	t.Helper()
	w := codec.NewBufWriter()
	a.EncodeBorsh(w)
	require.NoError(t, w.Err())

	r := codec.NewReaderFromBytes(w.Bytes())
	got := Decode(r)
	require.NoError(t, r.Err())
	return got
}

func TestCreateAccountTag(t *testing.T) {
	w := codec.NewBufWriter()
	(&CreateAccount{}).EncodeBorsh(w)
	require.Equal(t, []byte{0}, w.Bytes())
}

func TestTransferRoundTrip(t *testing.T) {
	deposit := uint256.MustFromDecimal("1000000000000000000000000")
	got := roundTripBorsh(t, &Transfer{Deposit: deposit})
	tr, ok := got.(*Transfer)
	require.True(t, ok)
	require.Equal(t, deposit.String(), tr.Deposit.String())
}

func TestFunctionCallRoundTrip(t *testing.T) {
	fc := &FunctionCall{
		MethodName: "increment",
		Args:       []byte(`{"by":1}`),
		Gas:        30_000_000_000_000,
		Deposit:    uint256.NewInt(1),
	}
	got := roundTripBorsh(t, fc)
	got2, ok := got.(*FunctionCall)
	require.True(t, ok)
	require.Equal(t, fc.MethodName, got2.MethodName)
	require.Equal(t, fc.Args, got2.Args)
	require.Equal(t, fc.Gas, got2.Gas)
	require.Equal(t, fc.Deposit.String(), got2.Deposit.String())
}

func TestAddKeyFunctionCallPermissionRoundTrip(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	allowance := uint256.NewInt(500)
	ak := &AddKey{
		PublicKey: kp.PublicKey(),
		AccessKey: AccessKey{
			Nonce: 7,
			Permission: FunctionCallPermission{
				ReceiverID:  "contract.near",
				MethodNames: []string{"a", "b"},
				Allowance:   allowance,
			},
		},
	}
	got := roundTripBorsh(t, ak)
	got2, ok := got.(*AddKey)
	require.True(t, ok)
	require.Equal(t, ak.PublicKey.Bytes, got2.PublicKey.Bytes)
	require.Equal(t, uint64(7), got2.AccessKey.Nonce)
	perm, ok := got2.AccessKey.Permission.(FunctionCallPermission)
	require.True(t, ok)
	require.Equal(t, "contract.near", perm.ReceiverID)
	require.Equal(t, []string{"a", "b"}, perm.MethodNames)
	require.Equal(t, "500", perm.Allowance.Dec())
}

func TestAddKeyFullAccessRoundTrip(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	ak := &AddKey{PublicKey: kp.PublicKey(), AccessKey: AccessKey{Nonce: 0, Permission: FullAccessPermission{}}}
	got := roundTripBorsh(t, ak)
	got2 := got.(*AddKey)
	_, ok := got2.AccessKey.Permission.(FullAccessPermission)
	require.True(t, ok)
}

func TestDelegateActionValidate(t *testing.T) {
	empty := &DelegateAction{}
	require.ErrorIs(t, empty.Validate(), ErrEmptyActions)

	nested := &DelegateAction{
		Actions: []Action{&Delegate{DelegateAction: &DelegateAction{}, Signature: &keys.Signature{}}},
	}
	require.ErrorIs(t, nested.Validate(), ErrNestedDelegate)

	ok := &DelegateAction{Actions: []Action{&Transfer{Deposit: uint256.NewInt(1)}}}
	require.NoError(t, ok.Validate())
}

func TestCreateAccountJSONAcceptsBothForms(t *testing.T) {
	a1, err := UnmarshalJSON([]byte(`"CreateAccount"`))
	require.NoError(t, err)
	require.Equal(t, KindCreateAccount, a1.Kind())

	a2, err := UnmarshalJSON([]byte(`{"CreateAccount":{}}`))
	require.NoError(t, err)
	require.Equal(t, KindCreateAccount, a2.Kind())
}

func TestTransferJSONRoundTrip(t *testing.T) {
	tr := &Transfer{Deposit: uint256.MustFromDecimal("1000000000000000000000000")}
	data, err := MarshalJSON(tr)
	require.NoError(t, err)
	require.JSONEq(t, `{"Transfer":{"deposit":"1000000000000000000000000"}}`, string(data))

	got, err := UnmarshalJSON(data)
	require.NoError(t, err)
	got2, ok := got.(*Transfer)
	require.True(t, ok)
	require.Equal(t, tr.Deposit.String(), got2.Deposit.String())
}
