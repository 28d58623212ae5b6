package bmatch

import (
	"testing"

	"github.com/relex/eventsink/util"
	"github.com/stretchr/testify/assert"
)

type valueMatchTestData struct {
	Value valueMatch `yaml:"value"`
}

func TestValueMatch(t *testing.T) {
	cases := []struct {
		yaml     string
		accepted []string
		rejected []string
	}{
		{`value: !!str my-name`, []string{"my-name"}, []string{"hello", ""}},
		{`value: plain`, []string{"plain"}, []string{"plain2"}},
		{`value: !!str-eq yes`, []string{"yes"}, []string{"no"}},
		{`value: !!str-not yes`, []string{"no", ""}, []string{"yes"}},
		{`value: !!str-start Foo`, []string{"FooBar"}, []string{"[Foo]"}},
		{`value: !!str-end Bar`, []string{"FooBar"}, []string{"[Bar]"}},
		{`value: !!str-contain Ok`, []string{"[Ok]"}, []string{"O.k"}},
		{`value: !!str-any`, []string{"x"}, []string{""}},
		{`value: !!glob Order*Failed`, []string{"OrderPaymentFailed"}, []string{"OrderShipped"}},
		{`value: !!regex ^Hello.*World$`, []string{"HelloXXXWorld"}, []string{"HelloXXX"}},
		{`value: !!len-gt 10`, []string{"1234567890A"}, []string{"1234567890"}},
		{`value: !!len-lt 5`, []string{"abcd"}, []string{"abcde"}},
	}
	for _, c := range cases {
		t.Run(c.yaml, func(tt *testing.T) {
			d := &valueMatchTestData{}
			if !assert.NoError(tt, util.UnmarshalYamlString(c.yaml, d)) {
				return
			}
			for _, v := range c.accepted {
				assert.True(tt, d.Value.match(v), v)
			}
			for _, v := range c.rejected {
				assert.False(tt, d.Value.match(v), v)
			}
		})
	}
}

func TestValueMatchErrors(t *testing.T) {
	d := &valueMatchTestData{}
	assert.EqualError(t, util.UnmarshalYamlString(`value: !!hello my-name`, d), "yaml line 1:8: Unsupported value-match tag: !!hello")
	assert.ErrorContains(t, util.UnmarshalYamlString(`value: !!regex ^Hello[.*World`, d),
		"yaml line 1:8: Failed value-match of tag !!regex: error parsing regexp: ")
	assert.ErrorContains(t, util.UnmarshalYamlString(`value: !!len-gt ten`, d), "Failed value-match of tag !!len-gt")
	assert.ErrorContains(t, util.UnmarshalYamlString(`value: !!str-any x`, d), "value must be empty")
}
