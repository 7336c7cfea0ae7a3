package sqlinline

const QInsertRender = `--sql 09b851d8-690b-4ac6-9eb6-413bac465032
insert into renders (
  id, session_id, brand_id, asset_type, background_url, final_image_url,
  blueprint, final_prompt, width, height, composited, render_backend, strategy_source, created_at
)
values ($1::uuid, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12, $13, $14);
`

const QSelectRenderByID = `--sql 9a0cc124-c373-4b73-b926-dd26da3e37d3
select id::text, session_id, brand_id, background_url, final_image_url, blueprint,
       final_prompt, width, height, composited, render_backend, strategy_source, created_at
from renders
where id = $1::uuid
limit 1;
`
