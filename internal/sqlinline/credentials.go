package sqlinline

const QSelectIntegrationToken = `--sql 595a5f76-2c8a-48fe-b425-23e3586c061e
select token
from integration_tokens
where provider = $1::text
order by updated_at desc
limit 1;
`

const QUpsertIntegrationToken = `--sql 7f41fd6c-307a-4fac-ba5a-6e2c26306a64
insert into integration_tokens (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
